package websocket

type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// IncomingMessage 客户端只会发动作请求。gameId/role 由连接本身盖章，
// 不信 JSON 里自己带的
type IncomingMessage struct {
	GameID string `json:"gameId"`
	Role   string `json:"role"`
	Event  string `json:"event"`
	Action string `json:"action"`
	Amount int    `json:"amount"`
}
