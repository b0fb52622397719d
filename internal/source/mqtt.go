package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// wirePayload is the compact JSON the radio head publishes per sample.
type wirePayload struct {
	ID   uint32  `json:"id"`
	RSSI float64 `json:"rssi"`
	Seq  uint16  `json:"seq"`
}

// decodePayload parses one published message body.
func decodePayload(payload []byte) (wirePayload, error) {
	var msg wirePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return wirePayload{}, fmt.Errorf("decode sample payload: %w", err)
	}
	return msg, nil
}

// MQTTSource subscribes to the sample topic with QoS 0. At-most-once
// delivery is exactly the wireless channel contract, so no stronger QoS
// is wanted.
type MQTTSource struct {
	host  string
	port  int
	topic string
	log   *logger.Logger

	client mqtt.Client

	malformed uint64 // dropped payloads, touched only by the paho callback goroutine
}

func NewMQTTSource(cfg config.MQTTConfig, log *logger.Logger) *MQTTSource {
	return &MQTTSource{
		host:  cfg.Host,
		port:  cfg.Port,
		topic: cfg.Topic,
		log:   log,
	}
}

func (s *MQTTSource) Name() string { return "mqtt" }

// Run connects to the broker, subscribes, and blocks until ctx is
// canceled. The initial connect failure is returned; once connected,
// paho's auto-reconnect owns recovery and resubscribes via the
// on-connect handler.
func (s *MQTTSource) Run(ctx context.Context, sink chan<- models.Sample) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", s.host, s.port))
	opts.SetClientID(fmt.Sprintf("signalhunt-%d", time.Now().Unix()))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.log.Infow("MQTT connected, subscribing", "topic", s.topic)
		token := c.Subscribe(s.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			s.handleMessage(msg.Payload(), sink)
		})
		if token.Wait() && token.Error() != nil {
			s.log.Errorw("MQTT subscribe failed", "topic", s.topic, "err", token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warnw("MQTT connection lost, reconnecting", "err", err)
	})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to MQTT broker %s:%d: %w", s.host, s.port, token.Error())
	}

	<-ctx.Done()
	s.client.Unsubscribe(s.topic)
	s.client.Disconnect(250)
	return ctx.Err()
}

// handleMessage converts one published payload into a sample.
func (s *MQTTSource) handleMessage(payload []byte, sink chan<- models.Sample) {
	msg, err := decodePayload(payload)
	if err != nil {
		s.malformed++
		s.log.Debugw("dropping malformed MQTT sample", "total_dropped", s.malformed, "err", err)
		return
	}
	accepted := offer(sink, models.Sample{
		BeaconID: msg.ID,
		DBm:      msg.RSSI,
		At:       time.Now(),
		Source:   s.Name(),
	})
	if !accepted {
		s.log.Debugw("sample channel full, dropping sample",
			"beacon_id", msg.ID,
			"seq", msg.Seq,
		)
	}
}
