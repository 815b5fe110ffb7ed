package engine

import (
	"context"
	"encoding/json"
)

// Action 是动作闭集枚举。新动作必须同时出现在 allActions 和
// BuildHandlers 的注册表里，缺一个都会在启动时报错。
type Action string

const (
	ActionTrain          Action = "train"
	ActionWork           Action = "work"
	ActionHeal           Action = "heal"
	ActionCollectRewards Action = "collect_rewards"
	ActionApplyJob       Action = "apply_job"
	ActionBuyItem        Action = "buy_item"
	ActionCreateJob      Action = "create_job"
	ActionCreateProduct  Action = "create_product"
	ActionEditJob        Action = "edit_job"
	ActionEditProduct    Action = "edit_product"
	ActionDeleteJob      Action = "delete_job"
	ActionDeleteProduct  Action = "delete_product"
	ActionSendFR         Action = "send_fr"
	ActionAcceptFR       Action = "accept_fr"
	ActionDonate         Action = "donate"
	ActionGift           Action = "gift"
	ActionFight          Action = "fight"
	ActionVote           Action = "vote"
	ActionRunForCP       Action = "run_for_cp"
	ActionRunForCongress Action = "run_for_congress"
	ActionRunForPP       Action = "run_for_pp"
	ActionProposeLaw     Action = "propose_law"
	ActionCreateThread   Action = "create_thread"
	ActionSendMsg        Action = "send_msg"
	ActionLikeShout      Action = "like_shout"
	ActionUnlikeShout    Action = "unlike_shout"
	ActionSubscribe      Action = "subscribe"
	ActionUnsubscribe    Action = "unsubscribe"
)

var allActions = []Action{
	ActionTrain, ActionWork, ActionHeal, ActionCollectRewards,
	ActionApplyJob, ActionBuyItem,
	ActionCreateJob, ActionCreateProduct, ActionEditJob, ActionEditProduct,
	ActionDeleteJob, ActionDeleteProduct,
	ActionSendFR, ActionAcceptFR, ActionDonate, ActionGift,
	ActionFight,
	ActionVote, ActionRunForCP, ActionRunForCongress, ActionRunForPP,
	ActionProposeLaw,
	ActionCreateThread, ActionSendMsg,
	ActionLikeShout, ActionUnlikeShout, ActionSubscribe, ActionUnsubscribe,
}

// Result 是动作执行结果的统一形态。
type Result struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// HandlerFunc 执行一个动作：解码 data、调用应用服务、返回业务载荷。
type HandlerFunc func(ctx context.Context, uid string, data json.RawMessage) (any, error)
