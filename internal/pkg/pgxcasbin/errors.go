package pgxcasbin

import "errors"

var (
	ErrRuleTooLong      = errors.New("rule length exceeds field count")
	ErrRuleEmpty        = errors.New("rule is empty")
	ErrArgsTooLong      = errors.New("args length exceeds field count")
	ErrEmptyPtype       = errors.New("ptype is empty")
	ErrInsertRow        = errors.New("failed to insert row")
	ErrDeleteRow        = errors.New("failed to delete row")
	ErrSelect           = errors.New("failed to select rules")
	ErrBatchExec        = errors.New("failed to execute batch")
	ErrCommitTx         = errors.New("failed to commit transaction")
	ErrNotifyMessage    = errors.New("failed to notify")
	ErrListenChannel    = errors.New("failed to listen channel")
	ErrWaitNotification = errors.New("failed to wait for notification")
)
