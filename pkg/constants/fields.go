package constants

// Common column names shared across tables.
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldEmail            = "email"
	FieldOwnerID          = "owner_id"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedDate = "last_modified_date"
	FieldProfileID        = "profile_id"
)

// Context keys used to pass request-scoped values through gin.
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"

	HeaderAuthorization = "Authorization"
)

// Response envelope keys.
const (
	ResponseError = "error"
	FieldMessage  = "message"
)
