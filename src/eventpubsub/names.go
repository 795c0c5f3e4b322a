package eventpubsub

const (
	CommandFilledEvent   = "CommandFilledEvent"
	CommandRejectedEvent = "CommandRejectedEvent"
	CommandFailedEvent   = "CommandFailedEvent"
	Error                = "DefaultError"
)
