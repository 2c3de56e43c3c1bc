package webhook

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

const msgTypeText = "text"

// inbound is the platform's push envelope.
type inbound struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   string   `xml:"ToUserName"`
	FromUserName string   `xml:"FromUserName"`
	CreateTime   int64    `xml:"CreateTime"`
	MsgType      string   `xml:"MsgType"`
	Content      string   `xml:"Content"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

// outbound is a passive text reply.
type outbound struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   cdata    `xml:"ToUserName"`
	FromUserName cdata    `xml:"FromUserName"`
	CreateTime   int64    `xml:"CreateTime"`
	MsgType      cdata    `xml:"MsgType"`
	Content      cdata    `xml:"Content"`
}

func parseEnvelope(body []byte) (*inbound, error) {
	var in inbound
	if err := xml.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedEnvelope, err)
	}
	in.FromUserName = strings.TrimSpace(in.FromUserName)
	if in.FromUserName == "" {
		return nil, fmt.Errorf("%w: missing FromUserName", common.ErrorMalformedEnvelope)
	}
	return &in, nil
}

// textReply addresses content back to the sender of in.
func textReply(in *inbound, content string, now int64) outbound {
	return outbound{
		ToUserName:   cdata{in.FromUserName},
		FromUserName: cdata{in.ToUserName},
		CreateTime:   now,
		MsgType:      cdata{msgTypeText},
		Content:      cdata{content},
	}
}
