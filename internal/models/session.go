package models

type Stage string

const (
	StageAwaitingEmail Stage = "awaiting_email"
	StageAwaitingCode  Stage = "awaiting_code"
)

type Session struct {
	Stage Stage
	Email string
}
