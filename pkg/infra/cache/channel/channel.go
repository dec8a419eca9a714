package channel

type Channel string

const SessionEventsChannel Channel = "promptguard:session_events"
