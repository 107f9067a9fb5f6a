package wire

// TypeGenerateJoke is the outbound request type on the socket transport.
const TypeGenerateJoke = "generate_joke"

// GenerateJokeRequest is the discriminated envelope a client sends over the
// socket to start a turn.
type GenerateJokeRequest struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

func NewGenerateJokeRequest(topic string) GenerateJokeRequest {
	return GenerateJokeRequest{Type: TypeGenerateJoke, Topic: topic}
}
