package config

import "time"

// ServiceConfig represents configuration for the voice CRM service
type ServiceConfig struct {
	Port string

	// Twilio configuration
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Public base URL the telephony provider can reach for webhooks
	PublicBaseURL string

	// JWT secret for the management API; auth is disabled when empty
	JWTSecret string

	// Redis configuration; the in-process context store is used when
	// RedisHost is empty
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Call context lifetime in the context store
	ContextTTL time.Duration

	// Upper bound on a single dialogue-model call during a live turn
	DialogueTimeout time.Duration

	// Instance identifier for multi-pod logging
	InstanceID string
}
