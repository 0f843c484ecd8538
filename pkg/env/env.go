package env

import (
	"flag"
	"os"

	"github.com/robotalks/ht12d/pkg/comm/mqtt"
	"github.com/robotalks/ht12d/pkg/comm/websocket"
	fx "github.com/robotalks/ht12d/pkg/framework"
	"github.com/robotalks/ht12d/pkg/receiver"
)

// Config defines where a receiver publishes.
type Config struct {
	MQTTBrokerURL string
	ListenAddr    string
}

// Env is the set of sinks for a receiver and the runners serving them.
type Env struct {
	Sinks   []receiver.Sink
	Runners []fx.Runnable
}

var defaultConfig Config

func init() {
	if val := os.Getenv("HT12_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/ht12/.")
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "Address serving websocket clients, e.g. :8080.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates the sinks for receiver id.
func (c *Config) NewEnv(id string) (*Env, error) {
	e := &Env{}
	if c.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(c.MQTTBrokerURL, id)
		if err != nil {
			return nil, err
		}
		e.Add(pub, pub)
	}
	if c.ListenAddr != "" {
		hub := websocket.NewHub(c.ListenAddr)
		e.Add(hub, hub)
	}
	return e, nil
}

// Add adds a sink and the runner serving it.
func (e *Env) Add(sink receiver.Sink, runner fx.Runnable) {
	e.Sinks = append(e.Sinks, sink)
	if runner != nil {
		e.Runners = append(e.Runners, runner)
	}
}
