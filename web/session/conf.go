package session

type Conf struct {
	EncryptionKey string `json:"enckey"`

	ExpireSliding int `json:"expire_sliding"` // seconds, refreshed on each access
	ExpireHardcap int `json:"expire_hardcap"` // seconds, cookie lifetime cap
}
