package dto

// ChatRequest 发送到聊天后端的消息
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
}

// ToolInfo 聊天回复中附带的工具调用信息
type ToolInfo struct {
	Type  string      `json:"type"`
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Input interface{} `json:"input,omitempty"`
}

// ChatResponse 聊天后端的回复
type ChatResponse struct {
	Response  string    `json:"response"`
	Tool      *ToolInfo `json:"tool,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// ChatMessage 聊天历史中的一条消息
type ChatMessage struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Error     bool   `json:"error,omitempty"`
}
