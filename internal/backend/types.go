package backend

// Credentials is what the operator enters on the setup step.
// APIID and APIHash are collected but are not part of the send-code
// contract; the backend is expected to hold them in its own config.
type Credentials struct {
	Phone   string
	APIID   string
	APIHash string
}

// Auth
type SendCodeReq struct {
	PhoneNumber string `json:"phone_number,omitempty"`
}
type SendCodeResp struct {
	PhoneCodeHash string `json:"phone_code_hash"`
}
type SignInReq struct {
	Code          string `json:"code"`
	PhoneCodeHash string `json:"phone_code_hash"`
}
type PasswordReq struct {
	Password string `json:"password"`
}

// MessageResp is the acknowledgement body most mutating endpoints return.
type MessageResp struct {
	Message string `json:"message"`
}

// ErrorResp is the error envelope shared by every endpoint.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// Userbot lifecycle
type UserInfo struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}
type UserbotStatus struct {
	Running  bool      `json:"running"`
	UserInfo *UserInfo `json:"user_info"`
	Message  string    `json:"message"`
}

// Groups
type Group struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}
type GroupReq struct {
	Identifier string `json:"identifier"`
}
type BulkGroupsReq struct {
	Identifiers []string `json:"identifiers"`
}

// Messages
type Message struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}
type MessageReq struct {
	Text string `json:"text"`
}

// Blacklist
type BlacklistEntry struct {
	ID          int64   `json:"id"`
	ChatID      string  `json:"chat_id"`
	Reason      string  `json:"reason"`
	IsPermanent bool    `json:"is_permanent"`
	ExpiryTime  *string `json:"expiry_time"`
}
type BlacklistReq struct {
	ChatID   string `json:"chat_id"`
	Reason   string `json:"reason"`
	Duration *int   `json:"duration,omitempty"`
}

// Settings (key/value configuration)
type Setting struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}
type SettingReq struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// List envelopes
type GroupsResp struct {
	Groups []Group `json:"groups"`
}
type MessagesResp struct {
	Messages []Message `json:"messages"`
}
type BlacklistResp struct {
	BlacklistedChats []BlacklistEntry `json:"blacklisted_chats"`
}
type SettingsResp struct {
	Config []Setting `json:"config"`
}
