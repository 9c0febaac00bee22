package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appoutbox "hotelfront/internal/app/outbox"
	"hotelfront/internal/app/uow"
)

var (
	ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")
	ErrUnitFinished            = errors.New("mongo: unit of work already finished")
)

// Factory opens a Mongo transaction per command. Outbox inserts made through
// the injected session context commit or abort with it.
type Factory struct {
	DB     *mongo.Database
	Outbox appoutbox.Outbox
}

var _ uow.UoWFactory = Factory{}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.Outbox == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	if err := session.StartTransaction(transactionOptions(f.DB, opts)); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, outbox: f.Outbox}, nil
}

func transactionOptions(db *mongo.Database, opts uow.TxOptions) *options.TransactionOptions {
	txn := options.Transaction().SetReadConcern(db.ReadConcern()).SetWriteConcern(db.WriteConcern())
	if opts.ReadOnly {
		// transactions only read from the primary
		txn = txn.SetReadPreference(readpref.Primary())
	}
	return txn
}

type Unit struct {
	session mongo.Session
	outbox  appoutbox.Outbox
	done    bool
}

func (u *Unit) Outbox() appoutbox.Outbox { return u.outbox }

func (u *Unit) Commit(ctx context.Context) error {
	return u.finish(ctx, u.session.CommitTransaction)
}

// Rollback aborts the transaction. It is a no-op once the unit has finished,
// so callers may roll back after a failed commit.
func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	return u.finish(ctx, u.session.AbortTransaction)
}

func (u *Unit) finish(ctx context.Context, end func(context.Context) error) error {
	if u.done {
		return ErrUnitFinished
	}
	u.done = true
	defer u.session.EndSession(ctx)
	return end(ctx)
}

// InjectContext binds the session to ctx so collection calls join the transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
