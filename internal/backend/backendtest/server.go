// Package backendtest provides an in-process fake of the userbot REST backend
// for tests. Auth outcomes are scripted; collection endpoints keep their data
// in memory.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"userbot-tma/internal/backend"
)

// Call records one request the fake received.
type Call struct {
	Method    string
	Path      string
	Body      map[string]any
	RequestID string
}

type Server struct {
	*httptest.Server

	mu             sync.Mutex
	phoneCodeHash  string
	issued         int
	sendCodeDetail string
	signInDetail   string
	passwordDetail string
	hold           chan struct{}
	calls          []Call

	running   bool
	groups    []backend.Group
	messages  []backend.Message
	blacklist []backend.BlacklistEntry
	settings  []backend.Setting
	nextID    int64
}

// New starts a fake backend with its API mounted under /api/v1 and /health on
// the root. It issues "abc" as the phone_code_hash unless told otherwise.
func New() *Server {
	s := &Server{phoneCodeHash: "abc", nextID: 1}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/send-code", s.sendCode)
		r.Post("/auth/sign-in", s.signIn)
		r.Post("/auth/sign-in-password", s.signInPassword)

		r.Get("/userbot/status", s.status)
		r.Post("/userbot/start", s.setRunning(true))
		r.Post("/userbot/stop", s.setRunning(false))

		r.Get("/groups", s.listGroups)
		r.Post("/groups", s.addGroup)
		r.Post("/groups/bulk", s.addGroups)
		r.Delete("/groups/{identifier}", s.deleteGroup)

		r.Get("/messages", s.listMessages)
		r.Post("/messages", s.addMessage)
		r.Delete("/messages/{id}", s.deleteMessage)

		r.Get("/blacklist", s.listBlacklist)
		r.Post("/blacklist", s.addBlacklist)
		r.Delete("/blacklist/{chatID}", s.deleteBlacklist)

		r.Get("/config", s.listSettings)
		r.Post("/config", s.setSetting)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the value to put in config.APIBase.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v1"
}

// SetPhoneCodeHash changes the hash issued by the next send-code.
func (s *Server) SetPhoneCodeHash(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phoneCodeHash = hash
}

// FailSendCode makes send-code answer 400 with detail. Empty clears it.
func (s *Server) FailSendCode(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendCodeDetail = detail
}

// FailSignIn makes sign-in answer 400 with detail. Empty clears it.
func (s *Server) FailSignIn(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signInDetail = detail
}

// FailPassword makes sign-in-password answer 400 with detail. Empty clears it.
func (s *Server) FailPassword(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwordDetail = detail
}

// Hold blocks every auth endpoint until the returned release func is called.
func (s *Server) Hold() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.hold = nil
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns a copy of the requests seen so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded requests for one path under /api/v1.
func (s *Server) CallsTo(path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Path == "/api/v1"+path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Call{Method: r.Method, Path: r.URL.Path, RequestID: r.Header.Get("X-Request-ID")}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				c.Body = body
			}
		}
		s.mu.Lock()
		s.calls = append(s.calls, c)
		s.mu.Unlock()

		r = r.WithContext(withBody(r.Context(), c.Body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) wait() {
	s.mu.Lock()
	ch := s.hold
	s.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (s *Server) sendCode(w http.ResponseWriter, r *http.Request) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendCodeDetail != "" {
		writeDetail(w, http.StatusBadRequest, s.sendCodeDetail)
		return
	}
	s.issued++
	writeJSON(w, http.StatusOK, backend.SendCodeResp{PhoneCodeHash: s.phoneCodeHash})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	s.wait()
	body := bodyFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.issued == 0 || body["phone_code_hash"] != s.phoneCodeHash {
		writeDetail(w, http.StatusBadRequest, "PhoneCodeExpired: phone_code_hash does not match the last code request")
		return
	}
	if s.signInDetail != "" {
		writeDetail(w, http.StatusBadRequest, s.signInDetail)
		return
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Signed in successfully"})
}

func (s *Server) signInPassword(w http.ResponseWriter, r *http.Request) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passwordDetail != "" {
		writeDetail(w, http.StatusBadRequest, s.passwordDetail)
		return
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Signed in with password successfully"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := backend.UserbotStatus{Running: s.running, Message: "Userbot is stopped"}
	if s.running {
		st.Message = "Userbot is running"
		st.UserInfo = &backend.UserInfo{ID: 1001, Username: "operator", FirstName: "Op", PhoneNumber: "+15551234567"}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) setRunning(running bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.running == running {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Userbot already %s", runningWord(running)))
			return
		}
		s.running = running
		writeJSON(w, http.StatusOK, backend.MessageResp{Message: fmt.Sprintf("Userbot %s successfully", runningWord(running))})
	}
}

func runningWord(running bool) string {
	if running {
		return "started"
	}
	return "stopped"
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, backend.GroupsResp{Groups: append([]backend.Group{}, s.groups...)})
}

func (s *Server) addGroupLocked(identifier string) bool {
	for _, g := range s.groups {
		if g.Identifier == identifier {
			return false
		}
	}
	s.groups = append(s.groups, backend.Group{ID: s.nextID, Identifier: identifier, Name: identifier})
	s.nextID++
	return true
}

func (s *Server) addGroup(w http.ResponseWriter, r *http.Request) {
	id, _ := bodyFrom(r.Context())["identifier"].(string)
	if id == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "identifier is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := "Group already exists"
	if s.addGroupLocked(id) {
		msg = "Group added successfully"
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: msg})
}

func (s *Server) addGroups(w http.ResponseWriter, r *http.Request) {
	raw, _ := bodyFrom(r.Context())["identifiers"].([]any)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range raw {
		if id, ok := v.(string); ok && id != "" {
			s.addGroupLocked(id)
		}
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: fmt.Sprintf("Added %d groups", len(raw))})
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.groups {
		if g.Identifier == identifier {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Group removed successfully"})
			return
		}
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Group not found"})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, backend.MessagesResp{Messages: append([]backend.Message{}, s.messages...)})
}

func (s *Server) addMessage(w http.ResponseWriter, r *http.Request) {
	text, _ := bodyFrom(r.Context())["text"].(string)
	if text == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "text is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, backend.Message{ID: s.nextID, Text: text})
	s.nextID++
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Message added successfully"})
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "message id must be an integer")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Message removed successfully"})
			return
		}
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Message not found"})
}

func (s *Server) listBlacklist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, backend.BlacklistResp{BlacklistedChats: append([]backend.BlacklistEntry{}, s.blacklist...)})
}

func (s *Server) addBlacklist(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	chatID, _ := body["chat_id"].(string)
	reason, _ := body["reason"].(string)
	if chatID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "chat_id is required")
		return
	}
	_, hasDuration := body["duration"]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist = append(s.blacklist, backend.BlacklistEntry{ID: s.nextID, ChatID: chatID, Reason: reason, IsPermanent: !hasDuration})
	s.nextID++
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Chat added to blacklist successfully"})
}

func (s *Server) deleteBlacklist(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.blacklist {
		if b.ChatID == chatID {
			s.blacklist = append(s.blacklist[:i], s.blacklist[i+1:]...)
			writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Chat removed from blacklist successfully"})
			return
		}
	}
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Chat not found in blacklist"})
}

func (s *Server) listSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, backend.SettingsResp{Config: append([]backend.Setting{}, s.settings...)})
}

func (s *Server) setSetting(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	key, _ := body["key"].(string)
	value, _ := body["value"].(string)
	if key == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "key is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.settings {
		if s.settings[i].Key == key {
			s.settings[i].Value = value
			writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Configuration updated successfully"})
			return
		}
	}
	s.settings = append(s.settings, backend.Setting{ID: s.nextID, Key: key, Value: value})
	s.nextID++
	writeJSON(w, http.StatusOK, backend.MessageResp{Message: "Configuration updated successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, backend.ErrorResp{Detail: detail})
}
