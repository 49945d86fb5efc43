package middlewares

const (
	CtxRequestID = "request_id"

	ctxMemberIDKey = "auth.memberID"
	ctxEmailKey    = "auth.email"
	ctxRoleKey     = "auth.role"
)
