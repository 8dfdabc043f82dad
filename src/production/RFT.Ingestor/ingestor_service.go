package rftingestor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Config"
	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	tracker "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Tracker"
)

// scanPayload is the JSON shape hardware readers publish on rfid/<reader>/scan.
type scanPayload struct {
	TagID    string `json:"tag_id"`
	Location string `json:"location"`
	RSSI     *int   `json:"rssi,omitempty"`
}

// Ingestor subscribes to reader scan topics and feeds each payload through
// the same pipeline as HTTP submissions. The MQTT callback only enqueues; a
// single worker drains the queue so broker delivery is never blocked by the
// store's write lock.
type Ingestor struct {
	cfg    config.MQTTConfig
	broker string
	svc    *tracker.Service
	log    *logger.Logger
	client mqtt.Client
	msgCh  chan tracker.RawEvent
	wg     sync.WaitGroup
}

func New(cfg config.MQTTConfig, brokerURL string, svc *tracker.Service, log *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		broker: brokerURL,
		svc:    svc,
		log:    log.WithComponent("ingestor"),
		msgCh:  make(chan tracker.RawEvent, 4096),
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.broker).
		SetClientID(i.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.KeepAlive).
		SetPingTimeout(i.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if i.cfg.BrokerUser != "" {
		opts.SetUsername(i.cfg.BrokerUser)
		opts.SetPassword(i.cfg.BrokerPass)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.log.WithError(err).Warn("mqtt connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.cfg.Topic
		if i.cfg.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", i.cfg.SharedGroup, i.cfg.Topic)
		}
		i.log.WithField("topic", topic).Info("mqtt connected, subscribing")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.log.WithError(token.Error()).Error("mqtt subscribe failed")
		}
	}

	i.client = mqtt.NewClient(opts)
	if tk := i.client.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.drain(ctx)
	}()

	return nil
}

func (i *Ingestor) Stop() {
	if i.client != nil && i.client.IsConnected() {
		i.client.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

func (i *Ingestor) IsConnected() bool {
	return i.client != nil && i.client.IsConnected()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	var payload scanPayload
	if err := json.Unmarshal(m.Payload(), &payload); err != nil {
		i.log.WithError(err).WithField("topic", m.Topic()).Warn("discarding undecodable scan payload")
		return
	}

	raw := tracker.RawEvent{TagID: payload.TagID, Location: payload.Location, RSSI: payload.RSSI}
	select {
	case i.msgCh <- raw:
	default:
		i.log.WithField("topic", m.Topic()).Warn("ingest queue full, dropping scan")
	}
}

func (i *Ingestor) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-i.msgCh:
			if !ok {
				return
			}
			if _, err := i.svc.Submit(ctx, raw); err != nil {
				if errors.Is(err, tracker.ErrInvalidEvent) || errors.Is(err, tracker.ErrUnknownTag) {
					i.log.WithError(err).WithField("tag_id", raw.TagID).Warn("rejected reader scan")
					continue
				}
				i.log.WithError(err).WithField("tag_id", raw.TagID).Error("failed to process reader scan")
			}
		}
	}
}
