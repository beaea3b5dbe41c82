package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"howlo/internal/bingo"
	"howlo/internal/domain"
	"howlo/internal/gateway"
	"howlo/internal/logger"
	"howlo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
)

// interaction - разобранный payload /slack/interactions
type interaction interface {
	interaction()
}

type accomplishmentSubmission struct {
	UserID    string
	ChannelID string
	Input     service.AchievementInput
}

type unsupportedInteraction struct {
	Type       slack.InteractionType
	CallbackID string
}

func (accomplishmentSubmission) interaction() {}
func (unsupportedInteraction) interaction()   {}

func parseInteraction(cb slack.InteractionCallback) interaction {
	if cb.Type != slack.InteractionTypeViewSubmission || cb.View.CallbackID != gateway.CallbackAccomplishment {
		return unsupportedInteraction{Type: cb.Type, CallbackID: cb.View.CallbackID}
	}

	var values map[string]map[string]slack.BlockAction
	if cb.View.State != nil {
		values = cb.View.State.Values
	}
	action := func(block, id string) slack.BlockAction {
		return values[block][id]
	}

	var challenge string
	if sel := action(gateway.BlockChallenge, gateway.ActionChallenge).SelectedOption.Value; sel != "" {
		if idx, err := strconv.Atoi(sel); err == nil {
			if slot, err := bingo.SlotAt(idx); err == nil {
				challenge = slot.Text
			}
		} else {
			challenge = sel
		}
	}

	return accomplishmentSubmission{
		UserID:    cb.User.ID,
		ChannelID: cb.View.PrivateMetadata,
		Input: service.AchievementInput{
			UserID:    cb.User.ID,
			Challenge: challenge,
			Companion: domain.Companion{
				UserID: action(gateway.BlockTagUser, gateway.ActionTagUser).SelectedUser,
				Name:   action(gateway.BlockTagName, gateway.ActionTagName).Value,
			},
			Location: action(gateway.BlockLocation, gateway.ActionLocation).Value,
		},
	}
}

// блок формы, под которым показывается ошибка поля
var fieldBlocks = map[string]string{
	service.FieldChallenge: gateway.BlockChallenge,
	service.FieldCompanion: gateway.BlockTagUser,
	service.FieldLocation:  gateway.BlockLocation,
}

func formErrors(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusOK, gin.H{"response_action": "errors", "errors": errs})
}

// SlackInteraction - POST /slack/interactions
func (h *Handler) SlackInteraction(c *gin.Context) {
	raw := c.PostForm("payload")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no payload"})
		return
	}
	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch in := parseInteraction(cb).(type) {
	case accomplishmentSubmission:
		h.submitAccomplishment(c, in)
	case unsupportedInteraction:
		logger.Debug("взаимодействие пропущено", "type", in.Type, "callback_id", in.CallbackID)
		c.Status(http.StatusOK)
	}
}

func (h *Handler) submitAccomplishment(c *gin.Context, in accomplishmentSubmission) {
	log := logger.With("component", "slack_interactions", "user", in.UserID)
	if in.ChannelID == "" {
		log.Warn("в форме нет канала, сообщения в канал не отправляются")
	}

	_, err := h.Submissions.Submit(c.Request.Context(), in.ChannelID, in.Input, h.now())
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"response_action": "clear"})
		return
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		block, ok := fieldBlocks[ve.Field]
		if !ok {
			block = gateway.BlockChallenge
		}
		formErrors(c, map[string]string{block: ve.Error()})
		return
	}

	log.Error("достижение не сохранено", "error", err)
	formErrors(c, map[string]string{gateway.BlockChallenge: "Failed to save accomplishment. Please try again."})
}
