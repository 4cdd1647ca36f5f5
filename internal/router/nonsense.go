package router

import (
	"strings"

	"github.com/soyeahso/mjrelay/internal/domain"
)

// systemAccountName is the WeChat platform account; its notices are never
// commands.
const systemAccountName = "微信团队"

// noticeMarkers are substrings the web client injects for events that have
// no text form on this transport: voice/video calls, red packets, transfers,
// and the public-link image placeholder.
var noticeMarkers = []string{
	"收到一条视频/语音聊天消息，请在手机上查看",
	"收到红包，请在手机上查看",
	"收到转账，请在手机上查看",
	"/cgi-bin/mmwebwx-bin/webwxgetpubliclinkimg",
}

// isNonsense reports whether a message can never be a command: wrong kind,
// platform sender, or a system notice body.
func isNonsense(msg domain.Message) bool {
	if msg.Kind != domain.KindText {
		return true
	}
	if msg.Sender == systemAccountName {
		return true
	}
	for _, marker := range noticeMarkers {
		if strings.Contains(msg.Text, marker) {
			return true
		}
	}
	return false
}
