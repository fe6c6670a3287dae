package publisher

// Publisher represents a service for publishing captured records
type Publisher interface {
	// Publish publishes a message under a key
	Publish(key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
