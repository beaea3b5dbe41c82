package handlers

import (
	"html/template"
	"net/http"

	"howlo/internal/bingo"
	"howlo/internal/service"

	"github.com/gin-gonic/gin"
)

const cardTemplateName = "card.html"

const cardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>HOWLO Bingo</title>
<style>
body{font-family:-apple-system,Helvetica,Arial,sans-serif;background:#1d1a2f;color:#f4f1ea;margin:0;padding:24px}
h1{text-align:center;letter-spacing:.3em}
.summary{text-align:center;margin-bottom:16px}
.grid{display:grid;grid-template-columns:repeat(5,1fr);gap:6px;max-width:760px;margin:0 auto}
.cell{background:#2c2846;border-radius:8px;padding:10px;font-size:12px;min-height:96px}
.cell.marked{background:#f2a541;color:#1d1a2f}
.cell.free{background:#6c5ce7;font-weight:bold;display:flex;align-items:center;justify-content:center}
</style>
</head>
<body>
<h1>H O W L O</h1>
{{if .Progress}}<div class="summary">{{.Progress.Period.Key}} · {{.Progress.Completed}}/24 challenges · {{len .Progress.Lines}} lines · {{.Progress.TotalXP}} XP · {{.Rank}}</div>{{end}}
<div class="grid">
{{range .Cells}}<div class="cell{{if .Free}} free{{else if .Marked}} marked{{end}}">{{.Text}}</div>
{{end}}</div>
</body>
</html>`

// Templates - html шаблоны для r.SetHTMLTemplate
func Templates() *template.Template {
	return template.Must(template.New(cardTemplateName).Parse(cardPage))
}

type cardView struct {
	Cells    []bingo.Cell
	Progress *service.Progress
	Rank     string
}

// карточка с отмеченными клетками, доступ по подписанной ссылке
func (h *Handler) Card(c *gin.Context) {
	userID, ok := h.cardUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := h.now()

	pr, err := h.Scoring.Progress(ctx, userID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load card"})
		return
	}
	rank, err := h.Board.GetUserRank(ctx, userID, now)
	if err != nil {
		rank = nil
	}
	h.renderCard(c, cardView{Cells: pr.Cells, Progress: pr, Rank: service.FormatRank(rank)})
}

// пустая карточка
func (h *Handler) BlankCard(c *gin.Context) {
	if _, ok := h.cardUser(c); !ok {
		return
	}
	h.renderCard(c, cardView{Cells: bingo.Grid{}.Cells()})
}

func (h *Handler) cardUser(c *gin.Context) (string, bool) {
	userID, err := h.Signer.Validate(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired link"})
		return "", false
	}
	return userID, true
}

func (h *Handler) renderCard(c *gin.Context, v cardView) {
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		body := gin.H{"cells": v.Cells}
		if v.Progress != nil {
			body["progress"] = v.Progress
			body["rank"] = v.Rank
		}
		c.JSON(http.StatusOK, body)
	default:
		c.HTML(http.StatusOK, cardTemplateName, v)
	}
}
