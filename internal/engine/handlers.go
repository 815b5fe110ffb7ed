package engine

import (
	"context"
	"encoding/json"

	battleapp "WorldRepublic/internal/battle/app"
	citizenapp "WorldRepublic/internal/citizen/app"
	companyapp "WorldRepublic/internal/company/app"
	countryapp "WorldRepublic/internal/country/app"
	electiondomain "WorldRepublic/internal/election/domain"
	shoutapp "WorldRepublic/internal/shout/app"
)

// ElectionPort 是分发器需要的选举侧能力（参选前校验选举类型要读一次文档）。
type ElectionPort interface {
	Get(ctx context.Context, id string) (*electiondomain.Election, error)
	Vote(ctx context.Context, voterID, electionID, candidateID string) error
	RunFor(ctx context.Context, citizenID, electionID string) error
}

// Services 汇集各上下文的应用服务，供 BuildHandlers 接线。
type Services struct {
	Citizens  *citizenapp.CitizenService
	Companies *companyapp.CompanyService
	Countries *countryapp.CountryService
	Elections ElectionPort
	Battles   *battleapp.BattleService
	Shouts    *shoutapp.ShoutService
}

// decode 解出动作参数；解不出来统一归为 BAD_PAYLOAD。
func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, errBadPayload
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errBadPayload.WithCause(err)
	}
	return v, nil
}

// BuildHandlers 为动作闭集的每个成员装一个处理器。
// 这里是唯一的动作 → 服务映射点，NewDispatcher 会校验覆盖完整。
func BuildHandlers(s Services) map[Action]HandlerFunc {
	return map[Action]HandlerFunc{
		ActionTrain: func(ctx context.Context, uid string, _ json.RawMessage) (any, error) {
			return nil, s.Citizens.Train(ctx, uid)
		},
		ActionHeal: func(ctx context.Context, uid string, _ json.RawMessage) (any, error) {
			return nil, s.Citizens.Heal(ctx, uid)
		},
		ActionCollectRewards: func(ctx context.Context, uid string, _ json.RawMessage) (any, error) {
			return nil, s.Citizens.CollectRewards(ctx, uid)
		},
		ActionWork: func(ctx context.Context, uid string, _ json.RawMessage) (any, error) {
			return nil, s.Companies.Work(ctx, uid)
		},

		ActionApplyJob: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company string `json:"company"`
				OfferID string `json:"offer_id"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Companies.ApplyJob(ctx, uid, p.Company, p.OfferID)
		},
		ActionBuyItem: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company  string `json:"company"`
				OfferID  string `json:"offer_id"`
				Quantity int    `json:"quantity"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Companies.BuyItem(ctx, uid, p.Company, p.OfferID, p.Quantity)
		},

		ActionCreateJob: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company   string  `json:"company"`
				Title     string  `json:"title"`
				Wage      float64 `json:"wage"`
				Positions int     `json:"positions"`
			}](data)
			if err != nil {
				return nil, err
			}
			offerID, err := s.Companies.CreateJobOffer(ctx, uid, p.Company, p.Title, p.Wage, p.Positions)
			if err != nil {
				return nil, err
			}
			return map[string]string{"offer_id": offerID}, nil
		},
		ActionEditJob: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company   string  `json:"company"`
				OfferID   string  `json:"offer_id"`
				Title     string  `json:"title"`
				Wage      float64 `json:"wage"`
				Positions int     `json:"positions"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Companies.EditJobOffer(ctx, uid, p.Company, p.OfferID, p.Title, p.Wage, p.Positions)
		},
		ActionDeleteJob: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company string `json:"company"`
				OfferID string `json:"offer_id"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Companies.DeleteJobOffer(ctx, uid, p.Company, p.OfferID)
		},
		ActionCreateProduct: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company  string  `json:"company"`
				ItemID   string  `json:"item_id"`
				Price    float64 `json:"price"`
				Quantity int     `json:"quantity"`
			}](data)
			if err != nil {
				return nil, err
			}
			offerID, err := s.Companies.CreateProductOffer(ctx, uid, p.Company, p.ItemID, p.Price, p.Quantity)
			if err != nil {
				return nil, err
			}
			return map[string]string{"offer_id": offerID}, nil
		},
		ActionEditProduct: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company  string  `json:"company"`
				OfferID  string  `json:"offer_id"`
				Price    float64 `json:"price"`
				Quantity int     `json:"quantity"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Companies.EditProductOffer(ctx, uid, p.Company, p.OfferID, p.Price, p.Quantity)
		},
		ActionDeleteProduct: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Company string `json:"company"`
				OfferID string `json:"offer_id"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Companies.DeleteProductOffer(ctx, uid, p.Company, p.OfferID)
		},

		ActionSendFR: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				To string `json:"to"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.SendFriendRequest(ctx, uid, p.To)
		},
		ActionAcceptFR: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				From string `json:"from"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.AcceptFriendRequest(ctx, uid, p.From)
		},
		ActionDonate: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				To       string  `json:"to"`
				Currency string  `json:"currency"`
				Amount   float64 `json:"amount"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.Donate(ctx, uid, p.To, p.Currency, p.Amount)
		},
		ActionGift: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				To       string `json:"to"`
				ItemID   string `json:"item_id"`
				Quantity int    `json:"quantity"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.Gift(ctx, uid, p.To, p.ItemID, p.Quantity)
		},

		ActionFight: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Battle string `json:"battle"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Battles.Fight(ctx, uid, p.Battle)
		},

		ActionVote: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Election  string `json:"election"`
				Candidate string `json:"candidate"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Elections.Vote(ctx, uid, p.Election, p.Candidate)
		},
		ActionRunForCP:       runForHandler(s, electiondomain.TypeCountryPresident),
		ActionRunForCongress: runForHandler(s, electiondomain.TypeCongress),
		ActionRunForPP:       runForHandler(s, electiondomain.TypePartyPresident),

		ActionProposeLaw: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Country     string `json:"country"`
				Description string `json:"description"`
			}](data)
			if err != nil {
				return nil, err
			}
			lawID, err := s.Countries.ProposeLaw(ctx, uid, p.Country, p.Description)
			if err != nil {
				return nil, err
			}
			return map[string]string{"law_id": lawID}, nil
		},

		ActionCreateThread: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				To      string `json:"to"`
				Subject string `json:"subject"`
				Body    string `json:"body"`
			}](data)
			if err != nil {
				return nil, err
			}
			threadID, err := s.Citizens.CreateThread(ctx, uid, p.To, p.Subject, p.Body)
			if err != nil {
				return nil, err
			}
			return map[string]string{"thread_id": threadID}, nil
		},
		ActionSendMsg: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Thread string `json:"thread"`
				Body   string `json:"body"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.SendMessage(ctx, uid, p.Thread, p.Body)
		},

		ActionLikeShout: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Shout string `json:"shout"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Shouts.Like(ctx, uid, p.Shout)
		},
		ActionUnlikeShout: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Shout string `json:"shout"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Shouts.Unlike(ctx, uid, p.Shout)
		},
		ActionSubscribe: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Author string `json:"author"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.Subscribe(ctx, uid, p.Author)
		},
		ActionUnsubscribe: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			p, err := decode[struct {
				Author string `json:"author"`
			}](data)
			if err != nil {
				return nil, err
			}
			return nil, s.Citizens.Unsubscribe(ctx, uid, p.Author)
		},
	}
}

// runForHandler 先校验选举类型与动作一致，再登记参选。
// run_for_cp 报名到国会选举这类错配是参数错误，不该落为 CONFLICT。
func runForHandler(s Services, want electiondomain.Type) HandlerFunc {
	return func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
		p, err := decode[struct {
			Election string `json:"election"`
		}](data)
		if err != nil {
			return nil, err
		}
		e, err := s.Elections.Get(ctx, p.Election)
		if err != nil {
			return nil, err
		}
		if e.Type != want {
			return nil, errBadPayload.WithData("reason", "election type mismatch")
		}
		return nil, s.Elections.RunFor(ctx, uid, p.Election)
	}
}
