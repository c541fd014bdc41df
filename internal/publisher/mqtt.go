package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/cgmreport/internal/config"
	"github.com/jgoulah/cgmreport/pkg/models"
)

const connectTimeout = 10 * time.Second

// Publisher sends reports to an MQTT broker and/or Home Assistant
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig) (*Publisher, error) {
	if !mqttCfg.Enabled && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	var client mqtt.Client
	var topicPrefix string

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		topicPrefix = mqttCfg.TopicPrefix
		if topicPrefix == "" {
			topicPrefix = "cgmreport"
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("cgmreport")
		opts.SetAutoReconnect(true)
		opts.SetConnectTimeout(connectTimeout)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		token := client.Connect()
		if !token.WaitTimeout(connectTimeout + time.Second) {
			client.Disconnect(0)
			return nil, fmt.Errorf("connecting to MQTT broker %s: timed out", mqttCfg.Broker)
		}
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
		}
	}

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		haConfig:    haCfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// ModePayload is the retained MQTT message for one epoch of a report
type ModePayload struct {
	ReportID string                         `json:"report_id"`
	Mode     models.Mode                    `json:"mode"`
	Boundary string                         `json:"boundary"`
	Readings int                            `json:"readings"`
	Metrics  map[string]map[string]*float64 `json:"metrics"` // window -> category -> percent, null when undefined
}

// NewModePayload builds the message for one mode of a report
func NewModePayload(r *models.Report, mode models.Mode) ModePayload {
	row := r.Row(mode)
	readings := r.ManualCount
	if mode == models.ModeAuto {
		readings = r.AutoCount
	}

	p := ModePayload{
		ReportID: r.ID,
		Mode:     mode,
		Boundary: r.Boundary.Format(time.RFC3339),
		Readings: readings,
		Metrics:  make(map[string]map[string]*float64, models.NumWindows),
	}
	for _, w := range models.AllWindows {
		values := make(map[string]*float64, models.NumCategories)
		for _, c := range models.AllCategories {
			v := row.At(w, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[c.String()] = nil
				continue
			}
			values[c.String()] = &v
		}
		p.Metrics[w.String()] = values
	}
	return p
}

// HAPayload matches the Home Assistant backfill service call data
type HAPayload struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
	LastUpdated string `json:"last_updated"`
}

// NewHAPayload reports the whole-day time in range for one mode
func NewHAPayload(entityID string, r *models.Report, mode models.Mode) HAPayload {
	state := "unknown"
	if v := r.Row(mode).At(models.WholeDay, models.InRange); !math.IsNaN(v) {
		state = fmt.Sprintf("%.2f", v)
	}

	timestamp := r.CreatedAt.UTC().Format(time.RFC3339)
	return HAPayload{
		EntityID:    fmt.Sprintf("%s_%s", entityID, mode),
		State:       state,
		LastChanged: timestamp,
		LastUpdated: timestamp,
	}
}

// Publish sends both modes of a report to every enabled destination
func (p *Publisher) Publish(r *models.Report) error {
	for _, mode := range []models.Mode{models.ModeManual, models.ModeAuto} {
		if p.client != nil {
			if err := p.publishMQTT(r, mode); err != nil {
				return err
			}
		}
		if p.haConfig.Enabled {
			if err := p.publishHA(r, mode); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Publisher) publishMQTT(r *models.Report, mode models.Mode) error {
	body, err := json.Marshal(NewModePayload(r, mode))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", p.topicPrefix, mode)
	token := p.client.Publish(topic, 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) publishHA(r *models.Report, mode models.Mode) error {
	// AppDaemon API endpoint
	apiURL := fmt.Sprintf("%s/api/appdaemon/backfill_state", strings.TrimSuffix(p.haConfig.URL, "/"))

	body, err := json.Marshal(NewHAPayload(p.haConfig.EntityID, r, mode))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
