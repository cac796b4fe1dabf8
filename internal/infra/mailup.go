package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// mailUpStatusDone is the only status MailUp uses for an accepted message.
const mailUpStatusDone = "done"

// MailUpConfig holds the relay endpoint, sender identity and credentials.
type MailUpConfig struct {
	Endpoint     string
	APIKey       string
	Username     string
	Secret       string
	FromName     string
	FromEmail    string
	CampaignName string
	CampaignCode string
}

type mailUpAddress struct {
	Name  string `json:"Name"`
	Email string `json:"Email"`
}

type mailUpHTML struct {
	DocType *string `json:"DocType"`
	Head    *string `json:"Head"`
	Body    string  `json:"Body"`
	BodyTag string  `json:"BodyTag"`
}

type mailUpSMTPAPI struct {
	CampaignName      string   `json:"CampaignName"`
	CampaignCode      string   `json:"CampaignCode"`
	Header            bool     `json:"Header"`
	Footer            bool     `json:"Footer"`
	ClickTracking     *bool    `json:"ClickTracking"`
	ViewTracking      *bool    `json:"ViewTracking"`
	Priority          *int     `json:"Priority"`
	Schedule          *string  `json:"Schedule"`
	DynamicFields     []string `json:"DynamicFields"`
	CampaignReport    *string  `json:"CampaignReport"`
	SkipDynamicFields *bool    `json:"SkipDynamicFields"`
}

type mailUpUser struct {
	Username string `json:"Username"`
	Secret   string `json:"Secret"`
}

// mailUpMessage is the sendmessage envelope.
type mailUpMessage struct {
	HTML            mailUpHTML      `json:"Html"`
	Text            string          `json:"Text"`
	Subject         string          `json:"Subject"`
	From            mailUpAddress   `json:"From"`
	To              []mailUpAddress `json:"To"`
	Cc              []mailUpAddress `json:"Cc"`
	Bcc             []mailUpAddress `json:"Bcc"`
	ReplyTo         *string         `json:"ReplyTo"`
	CharSet         string          `json:"CharSet"`
	ExtendedHeaders *string         `json:"ExtendedHeaders"`
	Attachments     *string         `json:"Attachments"`
	EmbeddedImages  []string        `json:"EmbeddedImages"`
	XSmtpAPI        mailUpSMTPAPI   `json:"XSmtpAPI"`
	User            mailUpUser      `json:"User"`
}

type mailUpResponse struct {
	Status  string `json:"Status"`
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// MailUpClient sends HTML emails through the MailUp transactional API.
type MailUpClient struct {
	cfg        MailUpConfig
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewMailUpClient(cfg MailUpConfig, httpClient *http.Client, cb *CircuitBreaker) *MailUpClient {
	return &MailUpClient{cfg: cfg, httpClient: httpClient, cb: cb}
}

// Enviar posts one message. Any status other than "done" is a DeliveryFailure.
func (c *MailUpClient) Enviar(ctx context.Context, m Email) error {
	to := strings.TrimSpace(m.ToEmail)
	if to == "" {
		return &DeliveryFailure{Destinatario: m.ToEmail, Err: ErrDestinatarioVacio}
	}

	err := c.cb.Execute(func() error {
		return c.send(ctx, to, m)
	})
	if err == ErrCircuitOpen {
		return &DeliveryFailure{Destinatario: to, Err: err}
	}
	return err
}

func (c *MailUpClient) send(ctx context.Context, to string, m Email) error {
	name := m.ToName
	if name == "" {
		name = to
	}
	msg := mailUpMessage{
		HTML:           mailUpHTML{Body: m.HTML, BodyTag: "<body>"},
		Subject:        m.Subject,
		From:           mailUpAddress{Name: c.cfg.FromName, Email: c.cfg.FromEmail},
		To:             []mailUpAddress{{Name: name, Email: to}},
		Cc:             []mailUpAddress{},
		Bcc:            []mailUpAddress{},
		CharSet:        "utf-8",
		EmbeddedImages: []string{},
		XSmtpAPI: mailUpSMTPAPI{
			CampaignName:  c.cfg.CampaignName,
			CampaignCode:  c.cfg.CampaignCode,
			Footer:        true,
			DynamicFields: []string{},
		},
		User: mailUpUser{Username: c.cfg.Username, Secret: c.cfg.Secret},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryFailure{Destinatario: to, Err: fmt.Errorf("marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryFailure{Destinatario: to, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-cors-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryFailure{Destinatario: to, Err: err}
	}
	defer resp.Body.Close()

	// The body may not be JSON at all on gateway errors; treat that as an
	// empty status rather than a decode failure.
	var result mailUpResponse
	_ = json.NewDecoder(resp.Body).Decode(&result)

	if result.Status != mailUpStatusDone {
		status := result.Status
		if status == "" {
			status = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return &DeliveryFailure{Destinatario: to, Status: status}
	}
	return nil
}
