package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/ht12d/pkg/comm/mqtt"
	"github.com/robotalks/ht12d/pkg/comm/websocket"
	"github.com/robotalks/ht12d/pkg/msgs"
)

var (
	brokerURL  = "mqtt://localhost:1883/ht12/"
	receiverID = "+"
	outputJSON bool
)

func init() {
	if val := os.Getenv("HT12_MQTT_URL"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "url", brokerURL, "MQTT broker URL, or websocket URL (ws://host:port/ws) of a receiver.")
	flag.StringVar(&receiverID, "receiver", receiverID, "Receiver ID, + for all.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print messages in JSON.")
}

func printMessage(receiver string, msg msgs.Message) {
	switch m := msg.(type) {
	case nil:
		log.Printf("%s: offline", receiver)
		return
	case *msgs.Frame:
		if !outputJSON {
			log.Printf("%s: frame %v addr=%02x data=%x repeat=%d",
				receiver, m.DecodedWord(), m.Address, m.Data, m.Repeat)
			return
		}
	case *msgs.Status:
		if !outputJSON {
			log.Printf("%s: status period=%v degraded=%v connected=%v frames=%d errors=%d %s",
				receiver, m.ClockPeriod(), m.Degraded, m.Connected, m.Frames, m.Errors, m.Error)
			return
		}
	}
	out, err := json.Marshal(msg.Serializable())
	if err != nil {
		log.Printf("%s: %v", receiver, err)
		return
	}
	log.Printf("%s: %s", receiver, out)
}

func watchWebsocket(url string) {
	conn, err := websocket.Dial(url, "http://localhost/")
	if err != nil {
		log.Fatalln(err)
	}
	defer conn.Close()
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalln(err)
		}
		var receiver string
		switch m := msg.(type) {
		case *msgs.Frame:
			receiver = m.Receiver
		case *msgs.Status:
			receiver = m.Receiver
		}
		printMessage(receiver, msg)
	}
}

func watchMQTT(url string) {
	q, err := mqtt.NewQueueFromURL(url)
	if err != nil {
		log.Fatalln(err)
	}
	mqtt.Subscribe(q, receiverID, printMessage)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	if strings.HasPrefix(brokerURL, "ws://") || strings.HasPrefix(brokerURL, "wss://") {
		watchWebsocket(brokerURL)
		return
	}
	watchMQTT(brokerURL)
}
