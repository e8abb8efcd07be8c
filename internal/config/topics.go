package config

const (
	// TopicIndexResult is the NSQ topic for ingestion run outcomes.
	TopicIndexResult = "index.result"
)
