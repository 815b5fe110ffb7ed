package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"WorldRepublic/internal/shared/utils"
	"WorldRepublic/modules/kit/logx"
)

const secretKeyLen = 16

// Hub 维护公民 id -> 推送连接的映射。动作执行器在告警入库后调用
// Push，把“有新告警”这一事实推给在线客户端。
type Hub struct {
	mu            sync.RWMutex
	conns         map[string][]*Conn
	secretEnabled bool
	upgrader      websocket.Upgrader
	log           logx.Logger
}

func NewHub(secretEnabled bool, l logx.Logger) *Hub {
	return &Hub{
		conns:         make(map[string][]*Conn),
		secretEnabled: secretEnabled,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: l,
	}
}

// Attach 升级 HTTP 连接并注册到公民名下；加密开启时先下发握手密钥。
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, citizenID string) error {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	secretKey := ""
	if h.secretEnabled {
		secretKey = utils.RandSeq(secretKeyLen)
	}

	c := newConn(wsConn, secretKey, h.log)
	c.run()
	if secretKey != "" {
		c.Push(HandshakeMsg, &Handshake{Key: secretKey})
	}

	h.mu.Lock()
	h.conns[citizenID] = append(h.conns[citizenID], c)
	h.mu.Unlock()

	go func() {
		<-c.Done()
		h.detach(citizenID, c)
	}()

	h.log.Info("ws attach", zap.String("citizen_id", citizenID))
	return nil
}

// Push 把告警帧推给该公民的所有在线连接；离线则静默（告警已入库）。
func (h *Hub) Push(citizenID string, alert any) {
	h.mu.RLock()
	conns := h.conns[citizenID]
	h.mu.RUnlock()

	for _, c := range conns {
		c.Push(AlertPushMsg, alert)
	}
}

func (h *Hub) detach(citizenID string, target *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[citizenID]
	next := conns[:0]
	for _, c := range conns {
		if c != target {
			next = append(next, c)
		}
	}
	if len(next) == 0 {
		delete(h.conns, citizenID)
		return
	}
	h.conns[citizenID] = next
}

// Shutdown 关闭全部连接。
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.conns {
		for _, c := range conns {
			c.Close()
		}
	}
	h.conns = make(map[string][]*Conn)
}
