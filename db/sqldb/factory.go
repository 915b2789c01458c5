package sqldb

import "fmt"

// ClientFactory constructs a Client from Conf. Implementations register
// themselves with RegisterFactory; sqldb.New picks one by the conf type.
type ClientFactory func(conf *Conf) (Client, error)

var registry = map[string]ClientFactory{}

func RegisterFactory(dbType string, factory ClientFactory) {
	registry[dbType] = factory
}

func New(conf *Conf) (Client, error) {
	factory, ok := registry[conf.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", conf.Type)
	}
	return factory(conf)
}
