package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ht12d/pkg/comm/mqtt"
	"github.com/robotalks/ht12d/pkg/comm/websocket"
)

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.Equal(t, id, MachineID())
}

func TestNewEnv(t *testing.T) {
	e, err := (&Config{}).NewEnv("gate")
	require.NoError(t, err)
	require.Empty(t, e.Sinks)
	require.Empty(t, e.Runners)

	e, err = (&Config{
		MQTTBrokerURL: "mqtt://localhost:1883/ht12/",
		ListenAddr:    ":0",
	}).NewEnv("gate")
	require.NoError(t, err)
	require.Len(t, e.Sinks, 2)
	require.Len(t, e.Runners, 2)
	pub, ok := e.Sinks[0].(*mqtt.Publisher)
	require.True(t, ok)
	require.Equal(t, "gate", pub.Receiver)
	require.Equal(t, "ht12/", pub.Queue.TopicPrefix)
	_, ok = e.Sinks[1].(*websocket.Hub)
	require.True(t, ok)

	_, err = (&Config{MQTTBrokerURL: "://bad"}).NewEnv("gate")
	require.Error(t, err)
}
