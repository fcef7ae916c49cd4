package TableDB

import (
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/db"
	"github.com/nickyhof/TableDB/op"
)

type Instance struct {
	Database *op.Database
}

func Open(database *op.Database) *Instance {
	return &Instance{
		Database: database,
	}
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Database, identity)
}
