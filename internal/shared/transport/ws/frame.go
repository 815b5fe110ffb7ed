package ws

// 推送帧约定：json -> AES-CBC（可选）-> zlib -> BinaryMessage。

const (
	// HandshakeMsg 下发加密密钥。
	HandshakeMsg = "handshake"
	// AlertPushMsg 推送公民告警。
	AlertPushMsg = "alert.push"
)

type RespBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Msg  any    `json:"msg"`
}

type Handshake struct {
	Key string `json:"key"`
}
