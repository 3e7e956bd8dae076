package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"summers-phone/internal/auth"
	"summers-phone/internal/calls"
	"summers-phone/internal/contacts"
	"summers-phone/internal/conversations"
	"summers-phone/internal/dispatch"
	"summers-phone/internal/messages"
	"summers-phone/internal/openclaw"
	"summers-phone/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth          *auth.Manager
	Contacts      *contacts.Service
	Conversations *conversations.Service
	Messages      *messages.Service
	Calls         *calls.Service
	Dispatch      *dispatch.Service
}

// --- Auth ---

type loginRequest struct {
	Password string `json:"password"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	pair, err := h.Auth.Login(time.Now(), req.Password)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	pair, err := h.Auth.Refresh(time.Now(), req.RefreshToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Contacts ---

func (h Handlers) ListContacts(c *gin.Context) {
	limit, offset, ok := pagination(c, 50)
	if !ok {
		return
	}
	rows, total, err := h.Contacts.List(c.Request.Context(), contacts.ListFilter{
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": rows, "total": total, "limit": limit, "offset": offset})
}

func (h Handlers) CreateContact(c *gin.Context) {
	var req contacts.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	contact, err := h.Contacts.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, contacts.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, contacts.ErrDuplicate):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phone_number already exists"})
		default:
			h.storeError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

// --- Conversations ---

func (h Handlers) ListConversations(c *gin.Context) {
	limit, offset, ok := pagination(c, 50)
	if !ok {
		return
	}
	rows, total, err := h.Conversations.List(c.Request.Context(), conversations.ListFilter{
		Channel: c.Query("channel"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": rows, "total": total, "limit": limit, "offset": offset})
}

// --- Messages ---

func (h Handlers) ListMessages(c *gin.Context) {
	limit, offset, ok := pagination(c, 100)
	if !ok {
		return
	}
	rows, total, err := h.Messages.List(c.Request.Context(), messages.ListFilter{
		ConversationID: c.Query("conversation_id"),
		ContactID:      c.Query("contact_id"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		if errors.Is(err, messages.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "conversation_id or contact_id required"})
			return
		}
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": rows, "total": total, "limit": limit, "offset": offset})
}

func (h Handlers) SendMessage(c *gin.Context) {
	var req dispatch.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, res, err := h.Dispatch.SendMessage(c.Request.Context(), req)
	if err != nil {
		h.dispatchError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": m, "openclaw": res})
}

// --- Calls ---

func (h Handlers) ListCalls(c *gin.Context) {
	limit, offset, ok := pagination(c, 50)
	if !ok {
		return
	}
	rows, total, err := h.Calls.List(c.Request.Context(), calls.ListFilter{
		ContactID:   c.Query("contact_id"),
		PhoneNumber: c.Query("phone_number"),
		Status:      c.Query("status"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		if errors.Is(err, calls.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": rows, "total": total, "limit": limit, "offset": offset})
}

func (h Handlers) InitiateCall(c *gin.Context) {
	var req dispatch.InitiateCallInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	call, res, err := h.Dispatch.InitiateCall(c.Request.Context(), req)
	if err != nil {
		h.dispatchError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"call": call, "openclaw": res})
}

// --- shared ---

func pagination(c *gin.Context, defaultLimit int) (limit, offset int, ok bool) {
	limit = defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return 0, 0, false
		}
		limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func (h Handlers) storeError(c *gin.Context, err error) {
	logger.FromGin(c).Error("store operation failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// dispatchError maps outbound-flow failures onto the API error taxonomy:
// bad input 400, rate cap 429, gateway or store failure 500 with the
// underlying message so the dashboard can show what the gateway said.
func (h Handlers) dispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dispatch.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dispatch.ErrRateLimited):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		var ge *openclaw.GatewayError
		if errors.As(err, &ge) {
			logger.FromGin(c).Error("gateway dispatch failed", "op", ge.Op, "status", ge.StatusCode)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ge.Error()})
			return
		}
		h.storeError(c, err)
	}
}
