package domain

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// Anonymous reports whether no user is attached to the request.
func (r RequestContext) Anonymous() bool {
	return r.UserID <= 0
}
