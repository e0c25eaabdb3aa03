package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/carprice/core/events"
	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/internal/eventbus"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pemBlock("CERTIFICATE", der)
	keyPEM := pemBlock("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(priv))

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))
	return
}

func pemBlock(typ string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func estimate() model.PriceEstimate {
	return model.PriceEstimate{
		ID:       "e1",
		Vehicle:  model.Vehicle{Brand: "Mercedes-Benz", Model: "C-Class"},
		Mean:     30000,
		Lower:    28000,
		Upper:    32000,
		Currency: model.Currency,
	}
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", LWTTopic: "carprice/status", LWTPayload: "offline"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "carprice/status", opts.WillTopic)
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "carprice/estimates", c.TopicPrefix)
	assert.Equal(t, 3, c.MaxRetries)
	assert.NoError(t, c.Validate())

	c.Enabled = true
	assert.Error(t, c.Validate())
	c.Broker = "tcp://localhost:1883"
	assert.NoError(t, c.Validate())
	c.QoS = 3
	assert.Error(t, c.Validate())
	c.QoS = 1
	c.TopicPrefix = "prices/#"
	assert.Error(t, c.Validate())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "mercedes-benz", slug("Mercedes-Benz"))
	assert.Equal(t, "rolls-royce", slug("Rolls Royce"))
	assert.Equal(t, "maruti", slug("Maruti"))
	assert.Equal(t, "a-b", slug("  A / B  "))
}

func TestPublishEstimate(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", QoS: 1, TopicPrefix: "prices/"}, nil)
	require.NoError(t, err)

	require.NoError(t, pub.PublishEstimate(context.Background(), estimate()))
	msgs := mc.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "prices/mercedes-benz", msgs[0].topic)
	assert.Equal(t, byte(1), msgs[0].qos)

	var got model.PriceEstimate
	require.NoError(t, json.Unmarshal(msgs[0].payload, &got))
	assert.Equal(t, estimate().Mean, got.Mean)
	assert.Equal(t, "e1", got.ID)
}

func TestPublishRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	useMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, nil)
	require.NoError(t, err)

	require.NoError(t, pub.PublishEstimate(context.Background(), estimate()))
	assert.Len(t, mc.messages(), 2)
}

func TestPublishGivesUp(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	useMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1}, nil)
	require.NoError(t, err)

	err = pub.PublishRejection(context.Background(), events.RejectionEvent{Reason: "invalid_vehicle"})
	assert.ErrorIs(t, err, fail)
	assert.Len(t, mc.messages(), 3)
}

func TestNewPublisher_ConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	useMock(t, mc)
	_, err := NewPublisher(Config{Broker: "tcp://localhost:1883"}, nil)
	assert.Error(t, err)
}

func TestForward(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883"}, nil)
	require.NoError(t, err)

	bus := eventbus.NewTyped[events.Event](4)
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		Forward(context.Background(), sub, pub, nil)
		close(done)
	}()

	bus.Publish(events.EstimateEvent{Estimate: estimate()})
	bus.Publish(events.RejectionEvent{Vehicle: model.Vehicle{Brand: "Ferrari"}, Reason: "implausible_engine", Time: time.Now()})
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward did not stop after bus close")
	}
	msgs := mc.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "carprice/estimates/mercedes-benz", msgs[0].topic)
	assert.Equal(t, "carprice/estimates/rejections", msgs[1].topic)
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connectErr  error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic, qos, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

func (m *mockClient) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
