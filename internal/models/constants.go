package models

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ItemStatus константы статусов вещей.
const (
	ItemStatusAvailable   = "available"
	ItemStatusBorrowed    = "borrowed"
	ItemStatusUnavailable = "unavailable"
)

// RequestStatus константы статусов заявок на одалживание и возврат.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusRejected  = "rejected"
	RequestStatusCompleted = "completed"
)

// NotificationType константы типов уведомлений.
const (
	NotificationTypeMessage = "message"
	NotificationTypeRequest = "request"
	NotificationTypeSystem  = "system"
	NotificationTypeRating  = "rating"
	NotificationTypeReturn  = "return"
	NotificationTypeReport  = "report"
)

// ValidItemStatuses список валидных статусов вещей.
var ValidItemStatuses = map[string]struct{}{
	ItemStatusAvailable:   {},
	ItemStatusBorrowed:    {},
	ItemStatusUnavailable: {},
}

// ValidRequestStatuses список валидных статусов заявок.
var ValidRequestStatuses = map[string]struct{}{
	RequestStatusPending:   {},
	RequestStatusAccepted:  {},
	RequestStatusRejected:  {},
	RequestStatusCompleted: {},
}

// ValidNotificationTypes список валидных типов уведомлений.
var ValidNotificationTypes = map[string]struct{}{
	NotificationTypeMessage: {},
	NotificationTypeRequest: {},
	NotificationTypeSystem:  {},
	NotificationTypeRating:  {},
	NotificationTypeReturn:  {},
	NotificationTypeReport:  {},
}
