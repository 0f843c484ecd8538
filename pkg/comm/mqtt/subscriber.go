package mqtt

import (
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/ht12d/pkg/msgs"
)

// MessageHandler receives decoded messages of a receiver. msg is nil when
// the receiver's meta topic is cleared, i.e. the receiver went offline.
type MessageHandler func(receiver string, msg msgs.Message)

// Subscribe subscribes frames and status of receiver, which can be "+"
// for all receivers.
func Subscribe(q *Queue, receiver string, handler MessageHandler) []*Subscription {
	h := func(topic string, payload []byte) {
		name := topic
		if pos := strings.LastIndex(topic, "/"); pos >= 0 {
			name = topic[:pos]
		}
		if len(payload) == 0 {
			if strings.HasSuffix(topic, "/"+MetaTopic) {
				handler(name, nil)
			}
			return
		}
		msg, err := msgs.Decode(payload)
		if err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		handler(name, msg)
	}
	return []*Subscription{
		q.Sub(ReceiverTopic(receiver, MetaTopic), h),
		q.Sub(ReceiverTopic(receiver, FrameTopic), h),
	}
}
