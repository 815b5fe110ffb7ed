package ws

import (
	"encoding/json"
	"sync"

	"github.com/go-think/openssl"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"WorldRepublic/internal/shared/security"
	"WorldRepublic/modules/kit/logx"
)

// Conn 是单个公民的告警推送连接。引擎只写不读业务消息：
// 动作全部走 HTTP 分发，这条通道只负责把告警帧推给客户端。
type Conn struct {
	conn      *websocket.Conn
	outChan   chan *RespBody
	secretKey string
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func newConn(wsConn *websocket.Conn, secretKey string, l logx.Logger) *Conn {
	return &Conn{
		conn:      wsConn,
		outChan:   make(chan *RespBody, 256),
		secretKey: secretKey,
		done:      make(chan struct{}),
		log:       l,
	}
}

func (c *Conn) run() {
	go c.readLoop()
	go c.writeLoop()
}

// Push 投递一帧；连接已满/已关时丢弃（告警日志仍在公民文档里，不丢事实）。
func (c *Conn) Push(name string, msg any) {
	body := &RespBody{Name: name, Msg: msg}
	select {
	case c.outChan <- body:
	case <-c.done:
	default:
		c.log.Warn("ws push channel full, drop frame", zap.String("name", name))
	}
}

// readLoop 只消费控制帧与客户端关闭，业务上没有入站消息。
func (c *Conn) readLoop() {
	defer c.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case msg, ok := <-c.outChan:
			if ok {
				c.write(msg)
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) write(msg *RespBody) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("ws write marshal json error", zap.Error(err))
		return
	}

	// 加密是可选的；握手帧本身永远不加密。
	if c.secretKey != "" && msg.Name != HandshakeMsg {
		key := c.secretKey
		data, err = security.AesCBCEncrypt(data, []byte(key), []byte(key), openssl.ZEROS_PADDING)
		if err != nil {
			c.log.Error("ws write encrypt error", zap.Error(err))
			return
		}
	}

	zipped, err := security.Zip(data)
	if err != nil {
		c.log.Error("ws write zip error", zap.Error(err))
		return
	}

	// 压缩后的密文是二进制字节流，必须走 BinaryMessage，不能走 TextMessage
	if err := c.conn.WriteMessage(websocket.BinaryMessage, zipped); err != nil {
		c.log.Error("ws write error", zap.Error(err))
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		close(c.done)
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}
