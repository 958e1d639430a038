package main

type WebSocketsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ProcessingResult struct {
	Err error
	Msg WebSocketsMessage
}

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}
