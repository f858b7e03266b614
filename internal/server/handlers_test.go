package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nsignature")

type formFile struct {
	field string
	name  string
	body  []byte
}

// form sends a multipart body built from fields and files.
func (s *testServer) form(method, target, token string, fields map[string]string, files ...formFile) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(s.t, err)
		_, err = part.Write(f.body)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// login signs in an account created directly in the store.
func (s *testServer) login(path, username string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/"+path+"/auth/login", "", map[string]string{
		"username": username,
		"password": testutil.Password,
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Tokens struct {
			Access string `json:"access"`
		} `json:"tokens"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Tokens.Access
}

type idStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func decode(t *testing.T, env envelope) idStatus {
	t.Helper()
	var v idStatus
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func inDays(n int) string {
	return time.Now().AddDate(0, 0, n).Format("2006-01-02")
}

func (s *testServer) requestShowing(buyer string, listingID uuid.UUID) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/buyer/showings", buyer, map[string]string{
		"property_listing_id": listingID.String(),
		"requested_date":      inDays(2),
		"preferred_time":      "morning",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(s.t, env).ID
}

func TestShowingResponsesOverHTTP(t *testing.T) {
	s := newTestServer(t)
	agentID, agent := s.register("agent", "alice")
	_, buyer := s.register("buyer", "bea")
	listing := testutil.Listing(t, s.store, uuid.MustParse(agentID), models.ListingPublished)

	first := s.requestShowing(buyer, listing.ID)
	base := "/api/v1/agent/showings/" + first

	for _, body := range []map[string]string{
		{"status": "accepted"},
		{"status": "accepted", "confirmed_date": inDays(3)},
		{"status": "accepted", "confirmed_time": "10:30"},
	} {
		w, env := s.do(http.MethodPost, base+"/respond", agent, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "confirmed_date and confirmed_time are required when accepting a showing", env.Message)
	}

	w, env := s.do(http.MethodPost, base+"/respond", agent, map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", env.Message)

	w, env = s.do(http.MethodPost, base+"/respond", agent, map[string]string{
		"status": "accepted", "confirmed_date": inDays(-2), "confirmed_time": "10:30",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Declining needs no slot.
	second := s.requestShowing(buyer, listing.ID)
	w, env = s.do(http.MethodPost, "/api/v1/agent/showings/"+second+"/respond", agent, map[string]string{"status": "declined"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "declined", decode(t, env).Status)

	// Accept and reject work without any body at all.
	w, env = s.do(http.MethodPost, base+"/accept", agent, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Showing accepted successfully", env.Message)
	assert.Equal(t, "accepted", decode(t, env).Status)

	third := s.requestShowing(buyer, listing.ID)
	w, env = s.do(http.MethodPost, "/api/v1/agent/showings/"+third+"/reject", agent, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Showing declined successfully", env.Message)

	w, env = s.do(http.MethodPost, base+"/accept", agent, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot respond to a showing with status: accepted", env.Message)

	w, _ = s.do(http.MethodPost, "/api/v1/agent/showings/not-a-uuid/accept", agent, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignAgreementOverHTTP(t *testing.T) {
	s := newTestServer(t)
	agentID, agent := s.register("agent", "alice")
	_, buyer := s.register("buyer", "bea")
	listing := testutil.Listing(t, s.store, uuid.MustParse(agentID), models.ListingPublished)

	accepted := func() string {
		id := s.requestShowing(buyer, listing.ID)
		w, _ := s.do(http.MethodPost, "/api/v1/agent/showings/"+id+"/respond", agent, map[string]string{
			"status": "accepted", "confirmed_date": inDays(3), "confirmed_time": "10:30",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return id
	}
	sig := formFile{field: "signature", name: "sig.png", body: pngBytes}

	id := accepted()
	target := "/api/v1/buyer/showings/" + id + "/sign-agreement"
	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
		msg    string
	}{
		{"not accepted", map[string]string{"agreement_accepted": "no"}, []formFile{sig}, "You must accept the agreement terms"},
		{"accepted missing", nil, []formFile{sig}, "You must accept the agreement terms"},
		{"no signature", map[string]string{"agreement_accepted": "true"}, nil, "Signature file is required"},
		{"bad extension", map[string]string{"agreement_accepted": "true"},
			[]formFile{{field: "signature", name: "sig.gif", body: []byte("GIF89a")}},
			"Signature must be a JPG, JPEG, PNG or PDF file"},
		{"too large", map[string]string{"agreement_accepted": "true"},
			[]formFile{{field: "signature", name: "sig.png", body: bytes.Repeat([]byte{1}, services.MaxSignatureSize+1)}},
			"Signature file must be 5MB or smaller"},
		{"bad duration", map[string]string{"agreement_accepted": "true", "duration_type": "forever"}, []formFile{sig},
			"Duration type must be 7_days or one_property"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.form(http.MethodPost, target, buyer, tt.fields, tt.files...)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, env.Message)
		})
	}

	for i, truthy := range []string{"on", "TRUE", "1", "yes"} {
		if i > 0 {
			id = accepted()
		}
		w, env := s.form(http.MethodPost, "/api/v1/buyer/showings/"+id+"/sign-agreement", buyer,
			map[string]string{"agreement_accepted": truthy, "duration_type": "7_days"}, sig)
		require.Equal(t, http.StatusCreated, w.Code, truthy+": "+w.Body.String())
		var agreement struct {
			DurationType string `json:"duration_type"`
			Signature    string `json:"signature"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &agreement))
		assert.Equal(t, "7_days", agreement.DurationType)
		assert.True(t, strings.HasPrefix(agreement.Signature, "data:image/png;base64,"))
	}

	w, env := s.form(http.MethodPost, "/api/v1/buyer/showings/"+id+"/sign-agreement", buyer,
		map[string]string{"agreement_accepted": "true"}, sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Agreement can only be signed for accepted showings. Current status: completed", env.Message)

	// The superadmin sees the showing together with its agreement.
	testutil.Superadmin(t, s.store, "root")
	admin := s.login("admin", "root")
	w, env = s.do(http.MethodGet, "/api/v1/admin/showing-agreements/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail struct {
		ID        string `json:"id"`
		Agreement *struct {
			ID string `json:"id"`
		} `json:"agreement"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, id, detail.ID)
	require.NotNil(t, detail.Agreement)
	assert.NotEmpty(t, detail.Agreement.ID)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/showing-agreements/"+uuid.NewString(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/admin/showing-agreements/"+id, buyer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCMAUploadOverHTTP(t *testing.T) {
	s := newTestServer(t)
	agentID, agent := s.register("agent", "alice")
	sellerID, _ := s.register("seller", "sam")
	req := testutil.SellingRequest(t, s.store, uuid.MustParse(sellerID), uuid.MustParse(agentID), models.SellingRequestAccepted)
	target := "/api/v1/agent/selling-requests/" + req.ID.String() + "/cma"

	w, env := s.form(http.MethodPost, target, agent, map[string]string{"title": "Spring CMA"},
		formFile{field: "files[]", name: "report.pdf", body: []byte("cma")},
		formFile{field: "files[]", name: "comps.xlsx", body: []byte("comps")},
		formFile{field: "files", name: "photos.zip", body: []byte("zip")},
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		DocumentType string `json:"document_type"`
		Files        []struct {
			OriginalFilename string `json:"original_filename"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, "Spring CMA", doc.Title)
	assert.Equal(t, "cma", doc.DocumentType)
	names := make([]string, 0, len(doc.Files))
	for _, f := range doc.Files {
		names = append(names, f.OriginalFilename)
	}
	assert.ElementsMatch(t, []string{"report.pdf", "comps.xlsx", "photos.zip"}, names)

	w, env = s.form(http.MethodPost, target, agent, map[string]string{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "At least one file is required", env.Message)

	w, env = s.do(http.MethodPost, target, agent, map[string]string{"title": "JSON"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "At least one file is required", env.Message)

	// No selling agreement has been attached yet.
	testutil.Superadmin(t, s.store, "root")
	admin := s.login("admin", "root")
	w, env = s.do(http.MethodGet, "/api/v1/admin/selling-agreements/"+doc.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Selling agreement not found", env.Message)

	w, _ = s.form(http.MethodPatch, "/api/v1/agent/property-documents/"+doc.ID+"/selling-agreement", agent, nil,
		formFile{field: "file", name: "agreement.pdf", body: []byte("agreement")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = s.do(http.MethodGet, "/api/v1/admin/selling-agreements/"+doc.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var agreement struct {
		ID                  string `json:"id"`
		SellingAgreementURL string `json:"selling_agreement_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &agreement))
	assert.Equal(t, doc.ID, agreement.ID)
	assert.NotEmpty(t, agreement.SellingAgreementURL)
}

func TestAdminBuyerDocumentUpload(t *testing.T) {
	s := newTestServer(t)
	buyerID, buyer := s.register("buyer", "bea")
	testutil.Superadmin(t, s.store, "root")
	admin := s.login("admin", "root")
	pdf := formFile{field: "document_file", name: "offer.pdf", body: []byte("%PDF-1.4")}

	w, env := s.form(http.MethodPost, "/api/v1/admin/buyer-documents", admin, map[string]string{
		"buyer_id": buyerID, "title": "Offer letter", "description": "countersigned",
	}, pdf)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Buyer document uploaded successfully", env.Message)
	var doc struct {
		BuyerID string `json:"buyer_id"`
		Title   string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, buyerID, doc.BuyerID)
	assert.Equal(t, "Offer letter", doc.Title)

	w, env = s.do(http.MethodGet, "/api/v1/buyer/documents", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mine []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
		code   int
		msg    string
	}{
		{"no buyer", map[string]string{"title": "x"}, []formFile{pdf}, http.StatusBadRequest, "buyer_id is required"},
		{"no file", map[string]string{"buyer_id": buyerID, "title": "x"}, nil, http.StatusBadRequest, "document_file is required"},
		{"not pdf", map[string]string{"buyer_id": buyerID, "title": "x"},
			[]formFile{{field: "document_file", name: "id.png", body: pngBytes}}, http.StatusBadRequest, "Only PDF files are allowed"},
		{"unknown buyer", map[string]string{"buyer_id": uuid.NewString(), "title": "x"}, []formFile{pdf}, http.StatusNotFound, "Buyer not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.form(http.MethodPost, "/api/v1/admin/buyer-documents", admin, tt.fields, tt.files...)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.msg, env.Message)
		})
	}

	w, _ = s.form(http.MethodPost, "/api/v1/admin/buyer-documents", buyer, map[string]string{"buyer_id": buyerID, "title": "x"}, pdf)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLegalDocumentRoutes(t *testing.T) {
	s := newTestServer(t)
	testutil.Superadmin(t, s.store, "root")
	admin := s.login("admin", "root")

	w, env := s.do(http.MethodPost, "/api/v1/admin/legal-documents", admin, map[string]string{
		"audience":      "buyer",
		"document_type": "privacy_policy",
		"title":         "Buyer Privacy Policy",
		"content":       "We keep your data safe.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, env)

	// The static "active" segment wins over the :id parameter.
	w, env = s.do(http.MethodGet, "/api/v1/admin/legal-documents/active/buyer/privacy_policy", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, created.ID, decode(t, env).ID)

	w, env = s.do(http.MethodGet, "/api/v1/admin/legal-documents/active/superadmin/privacy_policy", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Audience must be agent, seller or buyer", env.Message)

	w, env = s.do(http.MethodGet, "/api/v1/admin/legal-documents/active/buyer/cookie_policy", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Document type must be privacy_policy or terms_conditions", env.Message)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/legal-documents/active/seller/privacy_policy", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/admin/legal-documents/"+created.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode(t, env).ID)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/legal-documents/active", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type wsClient struct {
	conn   *websocket.Conn
	frames chan []byte
}

// dialWS connects and waits until the server's read loop is running, which
// happens only after the socket has joined the hub.
func dialWS(t *testing.T, target string) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &wsClient{conn: conn, frames: make(chan []byte, 16)}
	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		defer close(c.frames)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				return
			}
			c.frames <- b
		}
	}()
	require.NoError(t, conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)))
	select {
	case <-pong:
	case <-time.After(5 * time.Second):
		t.Fatal("websocket did not answer ping")
	}
	return c
}

func (c *wsClient) next(t *testing.T, v any) {
	t.Helper()
	select {
	case b, ok := <-c.frames:
		require.True(t, ok, "websocket closed")
		require.NoError(t, json.Unmarshal(b, v))
	case <-time.After(5 * time.Second):
		t.Fatal("no websocket frame")
	}
}

func TestWebsocketRoutes(t *testing.T) {
	s := newTestServer(t)
	agentID, agent := s.register("agent", "alice")
	_, seller := s.register("seller", "sam")
	_, buyer := s.register("buyer", "bea")
	listing := testutil.Listing(t, s.store, uuid.MustParse(agentID), models.ListingPublished)

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base+"/notifications", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	notes := dialWS(t, base+"/notifications?token="+url.QueryEscape(agent))
	s.requestShowing(buyer, listing.ID)
	var note struct {
		Type         string `json:"type"`
		Notification struct {
			Title string `json:"title"`
		} `json:"notification"`
	}
	notes.next(t, &note)
	assert.Equal(t, "notification", note.Type)
	assert.Equal(t, "New Showing Request", note.Notification.Title)

	w, env := s.do(http.MethodPost, "/api/v1/messaging/conversations", seller, map[string]string{"agent_id": agentID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conv := decode(t, env).ID
	w, _ = s.do(http.MethodPost, "/api/v1/messaging/conversations/"+conv+"/messages", seller, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Only participants may join the room.
	_, resp, err = websocket.DefaultDialer.Dial(base+"/chat/"+conv+"?token="+url.QueryEscape(buyer), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	chat := dialWS(t, base+"/chat/"+conv+"?token="+url.QueryEscape(agent))
	var prev struct {
		Type    string `json:"type"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	chat.next(t, &prev)
	assert.Equal(t, "previous_message", prev.Type)
	assert.Equal(t, "hello", prev.Message.Content)

	w, _ = s.do(http.MethodPost, "/api/v1/messaging/conversations/"+conv+"/messages", seller, map[string]string{"content": "are you free?"})
	require.Equal(t, http.StatusCreated, w.Code)
	var ev services.ChatEvent
	chat.next(t, &ev)
	assert.Equal(t, services.ChatMessage, ev.Type)
	assert.Equal(t, "are you free?", ev.Content)

	// Frames sent on the socket are stored and echoed to the room.
	require.NoError(t, chat.conn.WriteJSON(map[string]string{"type": "message", "content": "tomorrow works"}))
	chat.next(t, &ev)
	assert.Equal(t, "tomorrow works", ev.Content)
	assert.Equal(t, models.RoleAgent, ev.SenderType)

	w, env = s.do(http.MethodGet, "/api/v1/messaging/conversations/"+conv+"/messages", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 3)
}
