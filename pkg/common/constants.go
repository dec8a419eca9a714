package common

const SessionIDHeader = "X-Session-Id"
