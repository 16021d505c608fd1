package memory

import (
	"github.com/simplelender/backend/internal/auth"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	txndomain "github.com/simplelender/backend/internal/domain/transaction"
)

var (
	_ auth.Repository              = (*UserRepository)(nil)
	_ borrowerdomain.Repository    = (*BorrowerRepository)(nil)
	_ txndomain.Repository         = (*TransactionRepository)(nil)
	_ txndomain.BorrowerRepository = (*BorrowerRepository)(nil)
)
