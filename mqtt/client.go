package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/config"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/redis"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Topic layout used by the in-home devices:
//
//	home/<roomID>/state             room node snapshots (retained by the node)
//	home/power/state                power meter snapshots
//	home/<roomID>/relay/<type>/set  relay actuation commands (published by us)
const (
	roomStateTopic  = "home/+/state"
	powerStateTopic = "home/power/state"
)

// Client wraps the PAHO MQTT client. Incoming device messages become the
// latest snapshot in the realtime store; outgoing messages are relay commands.
type Client struct {
	client  mqtt.Client
	redis   *redis.RedisClient
	meterID string
	logger  *slog.Logger
}

// NewClient creates and connects a new MQTT client.
func NewClient(cfg *config.Config, redisClient *redis.RedisClient, logger *slog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	mqttClient := &Client{
		redis:   redisClient,
		meterID: cfg.PowerMeterID,
		logger:  logger.With("component", "mqtt_client"),
	}

	opts.SetOnConnectHandler(mqttClient.onConnect)
	opts.SetConnectionLostHandler(mqttClient.onConnectionLost)
	client := mqtt.NewClient(opts)
	mqttClient.client = client

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return mqttClient, nil
}

// Disconnect gracefully disconnects the client.
func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("MQTT Client disconnected")
	}
}

// PublishRelayCommand sends the actuation message to the relay's command topic.
func (c *Client) PublishRelayCommand(cmd *models.RelayCommand) error {
	topic := fmt.Sprintf("home/%s/relay/%s/set", cmd.RoomID, cmd.Type)

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal relay command: %w", err)
	}

	if token := c.client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish relay command to %s: %w", topic, token.Error())
	}
	c.logger.Info("Relay command published", "topic", topic, "state", cmd.State)
	return nil
}

func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("Successfully connected to MQTT broker. Subscribing to topics...")
	c.subscribe(roomStateTopic, c.handleRoomState)
	c.subscribe(powerStateTopic, c.handlePowerState)
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Error("Connection lost. Reconnecting...", slog.Any("error", err))
}

func (c *Client) subscribe(topic string, handler mqtt.MessageHandler) {
	if token := c.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to topic", "topic", topic, slog.Any("error", token.Error()))
	} else {
		c.logger.Info("Successfully subscribed to topic", "topic", topic)
	}
}

func (c *Client) handleRoomState(client mqtt.Client, msg mqtt.Message) {
	roomID, ok := roomIDFromTopic(msg.Topic())
	if !ok || roomID == "power" {
		return // power/state has its own handler
	}
	logger := c.logger.With("roomId", roomID, "topic", msg.Topic())

	var snapshot models.RoomSnapshot
	if err := json.Unmarshal(msg.Payload(), &snapshot); err != nil {
		logger.Error("Dropping malformed room snapshot", slog.Any("error", err))
		return
	}
	if err := snapshot.Validate(); err != nil {
		logger.Error("Dropping invalid room snapshot", slog.Any("error", err))
		return
	}

	if err := c.redis.SaveRoomSnapshot(roomID, &snapshot); err != nil {
		logger.Error("Failed to save room snapshot", slog.Any("error", err))
	}
}

func (c *Client) handlePowerState(client mqtt.Client, msg mqtt.Message) {
	logger := c.logger.With("topic", msg.Topic())

	var snapshot models.PowerSnapshot
	if err := json.Unmarshal(msg.Payload(), &snapshot); err != nil {
		logger.Error("Dropping malformed power snapshot", slog.Any("error", err))
		return
	}
	if err := snapshot.Validate(); err != nil {
		logger.Error("Dropping invalid power snapshot", slog.Any("error", err))
		return
	}

	if err := c.redis.SavePowerSnapshot(c.meterID, &snapshot); err != nil {
		logger.Error("Failed to save power snapshot", slog.Any("error", err))
	}
}

// roomIDFromTopic extracts the room segment of a home/<roomID>/state topic.
func roomIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "home" || parts[2] != "state" {
		return "", false
	}
	return parts[1], true
}
