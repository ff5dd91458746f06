package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrEmailSendFailure SMTP 与 HTTP API 均发送失败；调用方记录告警但不阻断主流程
var ErrEmailSendFailure = errors.New("邮件发送失败")
