package engine

import (
	"context"

	battleapp "WorldRepublic/internal/battle/app"
	battledomain "WorldRepublic/internal/battle/domain"
	citizenapp "WorldRepublic/internal/citizen/app"
	companyapp "WorldRepublic/internal/company/app"
	countryapp "WorldRepublic/internal/country/app"
	electionapp "WorldRepublic/internal/election/app"
	partyapp "WorldRepublic/internal/party/app"
)

// 各上下文的消费方接口都在这里用公民/国家/政党服务适配出来。
// 上下文之间只认接口，实体聚合不跨包流动。

// CitizenAdapter 适配公民服务，实现公司、选举、战斗上下文的消费方接口
// 以及分发器的发起方校验。
type CitizenAdapter struct {
	citizens *citizenapp.CitizenService
}

func NewCitizenAdapter(citizens *citizenapp.CitizenService) *CitizenAdapter {
	return &CitizenAdapter{citizens: citizens}
}

// Exists 实现 ActorDirectory。
func (a *CitizenAdapter) Exists(ctx context.Context, uid string) error {
	_, err := a.citizens.Get(ctx, uid)
	return err
}

// WorkProfile 实现公司上下文的 CitizenGateway。
func (a *CitizenAdapter) WorkProfile(ctx context.Context, citizenID string) (companyapp.WorkProfile, error) {
	c, err := a.citizens.Get(ctx, citizenID)
	if err != nil {
		return companyapp.WorkProfile{}, err
	}
	p := companyapp.WorkProfile{Health: c.Health, CanWork: c.CanWork}
	if c.Job != nil {
		p.Employer = c.Job.Company
		p.Wage = c.Job.Wage
	}
	return p, nil
}

func (a *CitizenAdapter) Paycheck(ctx context.Context, citizenID, currency string) error {
	return a.citizens.Paycheck(ctx, citizenID, currency)
}

func (a *CitizenAdapter) BindJob(ctx context.Context, citizenID, companyID, title string, wage float64) error {
	return a.citizens.BindJob(ctx, citizenID, companyID, title, wage)
}

func (a *CitizenAdapter) PayAndReceive(ctx context.Context, citizenID, currency string, cost float64, itemID string, quantity int) error {
	return a.citizens.PayAndReceive(ctx, citizenID, currency, cost, itemID, quantity)
}

// BindParty 实现政党上下文的 PartyBinder。
func (a *CitizenAdapter) BindParty(ctx context.Context, citizenID, partyID string) error {
	return a.citizens.BindParty(ctx, citizenID, partyID)
}

// Profile 实现选举上下文的 VoterDirectory。
func (a *CitizenAdapter) Profile(ctx context.Context, citizenID string) (electionapp.VoterProfile, error) {
	c, err := a.citizens.Get(ctx, citizenID)
	if err != nil {
		return electionapp.VoterProfile{}, err
	}
	return electionapp.VoterProfile{
		Country:   c.Country,
		Residence: c.Residence,
		Location:  c.Location,
		Party:     c.Party,
	}, nil
}

// FighterProfile 实现战斗上下文的 FighterDirectory。
func (a *CitizenAdapter) FighterProfile(ctx context.Context, citizenID string) (battleapp.FighterProfile, error) {
	c, err := a.citizens.Get(ctx, citizenID)
	if err != nil {
		return battleapp.FighterProfile{}, err
	}
	return battleapp.FighterProfile{
		Country:      c.Country,
		Level:        c.Level,
		Strength:     c.Strength,
		MilitaryRank: c.MilitaryRank,
		Health:       c.Health,
	}, nil
}

func (a *CitizenAdapter) DeductFightCost(ctx context.Context, citizenID string) error {
	return a.citizens.DeductHealth(ctx, citizenID, battledomain.FightHealthCost)
}

func (a *CitizenAdapter) RefundFightCost(ctx context.Context, citizenID string) error {
	return a.citizens.CreditHealth(ctx, citizenID, battledomain.FightHealthCost)
}

// CountryAdapter 适配国家服务，实现战斗上下文的情报接口。
// （公民注册的 CountryDirectory 与选举的 RegionDirectory 由国家服务自身实现。）
type CountryAdapter struct {
	countries *countryapp.CountryService
}

func NewCountryAdapter(countries *countryapp.CountryService) *CountryAdapter {
	return &CountryAdapter{countries: countries}
}

// RivalOf 实现战斗上下文的 CountryIntel。
func (a *CountryAdapter) RivalOf(ctx context.Context, countryID string) (string, error) {
	c, err := a.countries.Get(ctx, countryID)
	if err != nil {
		return "", err
	}
	return c.Rival, nil
}

// OfficeAdapter 把当选人写回政府/政党文档，实现选举上下文的 OfficeAppointer。
type OfficeAdapter struct {
	countries *countryapp.CountryService
	parties   *partyapp.PartyService
}

func NewOfficeAdapter(countries *countryapp.CountryService, parties *partyapp.PartyService) *OfficeAdapter {
	return &OfficeAdapter{countries: countries, parties: parties}
}

func (a *OfficeAdapter) AppointCountryPresident(ctx context.Context, countryID, citizenID string) error {
	return a.countries.AppointCountryPresident(ctx, countryID, citizenID)
}

func (a *OfficeAdapter) AppointCongress(ctx context.Context, countryID string, members []string) error {
	return a.countries.AppointCongress(ctx, countryID, members)
}

func (a *OfficeAdapter) AppointPartyPresident(ctx context.Context, partyID, citizenID string) error {
	return a.parties.AppointPresident(ctx, partyID, citizenID)
}
