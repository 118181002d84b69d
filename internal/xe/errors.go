package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams        = orz.NewError(10400, "参数无效")
	ErrInvalidToken         = orz.NewError(10403, "令牌无效")
	ErrPermissionDenied     = orz.NewError(10401, "您没有权限查看/修改/删除此数据")
	ErrAccountAlreadyUsed   = orz.NewError(10000, "账户已被使用")
	ErrIncorrectPassword    = orz.NewError(10001, "账户或密码错误")
	ErrAccountDisabled      = orz.NewError(10002, "账户已被禁用")
	ErrIncorrectOldPassword = orz.NewError(10003, "原密码错误")

	ErrInstrumentNotFound   = orz.NewError(10100, "交易品种不存在")
	ErrInstrumentExists     = orz.NewError(10101, "该品种代码已存在")
	ErrInstrumentReferenced = orz.NewError(10102, "该品种已被交易记录引用，只能停用不能删除")
	ErrInactiveInstrument   = orz.NewError(10103, "该品种已停用")

	ErrTradeNotFound  = orz.NewError(10200, "交易记录不存在")
	ErrTradeNoEntries = orz.NewError(10201, "交易至少需要一条进场记录")
	ErrOverExit       = orz.NewError(10202, "出场手数不能超过进场手数")

	ErrModelNotFound   = orz.NewError(10300, "交易模型不存在")
	ErrModelNameExists = orz.NewError(10301, "该模型名称已存在")
	ErrModelReferenced = orz.NewError(10302, "该模型已被交易记录引用，只能停用不能删除")

	ErrTagNotFound   = orz.NewError(10500, "标签不存在")
	ErrTagNameExists = orz.NewError(10501, "该标签名称已存在")

	ErrJournalNotFound  = orz.NewError(10600, "交易日志不存在")
	ErrScenarioNotFound = orz.NewError(10601, "P12场景不存在")
)
