package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// チェックアウト時の顧客情報（全部任意）
type CustomerInput struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (in CustomerInput) normalize() CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// 顧客解決の1手順。
// found=falseなら次の手順へ進む。errは即中断。
type customerStrategy struct {
	name    string
	applies func(in CustomerInput) bool
	resolve func(ctx context.Context, r repo.TxRepos, tenantID int64, in CustomerInput) (c model.Customer, found bool, err error)
}

// 上から順に試す。最後のgenericは必ず見つかる。
var customerStrategies = []customerStrategy{
	{
		name:    "by_id",
		applies: func(in CustomerInput) bool { return in.ID > 0 },
		resolve: func(ctx context.Context, r repo.TxRepos, tenantID int64, in CustomerInput) (model.Customer, bool, error) {
			return foundOrMiss(r.Customers().FindActiveByID(ctx, tenantID, in.ID))
		},
	},
	{
		name:    "by_email",
		applies: func(in CustomerInput) bool { return in.Email != "" },
		resolve: func(ctx context.Context, r repo.TxRepos, tenantID int64, in CustomerInput) (model.Customer, bool, error) {
			return foundOrMiss(r.Customers().FindActiveByEmail(ctx, tenantID, in.Email))
		},
	},
	{
		name:    "create",
		applies: func(in CustomerInput) bool { return in.Name != "" },
		resolve: createCustomer,
	},
	{
		// 汎用顧客はテナントに1件で、毎回作らずに使い回す
		name:    "generic",
		applies: func(CustomerInput) bool { return true },
		resolve: func(ctx context.Context, r repo.TxRepos, tenantID int64, _ CustomerInput) (model.Customer, bool, error) {
			c, err := r.Customers().GetOrCreateGeneric(ctx, tenantID)
			if err != nil {
				return model.Customer{}, false, err
			}
			return c, true, nil
		},
	},
}

// 新規作成。
// 同じemailが別のチェックアウトで先に作られていたらそれを使う。
func createCustomer(ctx context.Context, r repo.TxRepos, tenantID int64, in CustomerInput) (model.Customer, bool, error) {
	c := model.Customer{
		TenantID: tenantID,
		Name:     in.Name,
		Phone:    in.Phone,
		IsActive: true,
	}
	if in.Email != "" {
		email := in.Email
		c.Email = &email
	}

	var created model.Customer
	// 一意制約違反で外側のTxが壊れないようにSAVEPOINTで囲む
	err := r.Savepoint(ctx, func(sp repo.TxRepos) error {
		var err error
		created, err = sp.Customers().Create(ctx, c)
		return err
	})
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, repo.ErrConflict) || in.Email == "" {
		return model.Customer{}, false, err
	}

	// 無効化済みの顧客と衝突した場合は見つからないので次（generic）へ
	return foundOrMiss(r.Customers().FindActiveByEmail(ctx, tenantID, in.Email))
}

func foundOrMiss(c model.Customer, err error) (model.Customer, bool, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return model.Customer{}, false, nil
	}
	if err != nil {
		return model.Customer{}, false, err
	}
	return c, true, nil
}

// resolveCustomer は顧客を1人に決める。戻り値のIDは0にならない。
func resolveCustomer(ctx context.Context, r repo.TxRepos, tenantID int64, in CustomerInput) (model.Customer, string, error) {
	in = in.normalize()
	for _, s := range customerStrategies {
		if !s.applies(in) {
			continue
		}
		c, found, err := s.resolve(ctx, r, tenantID, in)
		if err != nil {
			return model.Customer{}, s.name, err
		}
		if found {
			return c, s.name, nil
		}
	}
	// genericは必ずfoundを返すのでここには来ない
	return model.Customer{}, "", repo.ErrNotFound
}
