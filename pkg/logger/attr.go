package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// CustomerID records the billing customer identifier under the key
// "customer_id".
func CustomerID(id string) slog.Attr {
	return slog.String("customer_id", id)
}

// Tier records a plan tier under the key "tier".
func Tier(tier any) slog.Attr {
	if tier == nil {
		return slog.Attr{}
	}
	return slog.Any("tier", tier)
}

// Resource records a metered resource name under the key "resource".
func Resource(resource any) slog.Attr {
	if resource == nil {
		return slog.Attr{}
	}
	return slog.Any("resource", resource)
}

// EventType records the billing event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// Component records the subsystem emitting the record under the key
// "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
