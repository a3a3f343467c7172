package domain

// Field keys shared by partial updates, the reducer table and JSON encoding.
const (
	KeyMessages        = "messages"
	KeyIsRequestValid  = "is_request_valid"
	KeyUserResponse    = "user_response"
	KeyUserIntent      = "user_intent"
	KeySearchQueries   = "search_queries"
	KeySearchRationale = "search_rationale"

	// Read-only and runner-owned fields. They are deliberately absent from
	// the reducer table so that no node can write them.
	KeyCurrentCode = "current_code"
	KeyPersona     = "persona"
	KeyTopics      = "topics"
	KeyError       = "error"
	KeyHistory     = "history"
)
