// Package config loads the two JSON files a ticketchain agent needs to
// start: the public user table shared across the network and the
// node's own private port/passcode/signing-key table. Grounded on
// pkg/config's viper-based loader, narrowed from YAML+env to the
// fixed JSON shape the protocol requires.
package config

import (
	"fmt"
	"math/big"

	"github.com/spf13/viper"
)

// PublicUser is one entry of the public user table: every known
// account's RSA modulus and, for remote agents, the host:port other
// nodes dial to reach it. Accounts with no Host are local to this
// agent's own priv.json.
type PublicUser struct {
	Key  string `mapstructure:"key" json:"key"`
	Host string `mapstructure:"host" json:"host"`
}

// Public is the full public user table, keyed by username.
type Public map[string]PublicUser

// Private holds this agent's own listening port, HTTP basic-auth
// passcodes for the accounts it hosts, and the RSA private exponent
// for each of those accounts.
type Private struct {
	Port      int               `mapstructure:"port" json:"port"`
	Passcodes map[string]string `mapstructure:"passcodes" json:"passcodes"`
	Secret    map[string]string `mapstructure:"secret" json:"secret"`
}

// Modulus parses u's key field into a big.Int.
func (u PublicUser) Modulus() (*big.Int, error) {
	n, ok := new(big.Int).SetString(u.Key, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid modulus %q", u.Key)
	}
	return n, nil
}

// PrivateExponent parses the secret for user into a big.Int.
func (p Private) PrivateExponent(user string) (*big.Int, error) {
	s, ok := p.Secret[user]
	if !ok {
		return nil, fmt.Errorf("config: no secret key for %q", user)
	}
	d, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid secret exponent for %q", user)
	}
	return d, nil
}

// LoadPublic reads the public user table from path.
func LoadPublic(path string) (Public, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read public table: %w", err)
	}
	var pub Public
	if err := v.Unmarshal(&pub); err != nil {
		return nil, fmt.Errorf("config: decode public table: %w", err)
	}
	return pub, nil
}

// LoadPrivate reads this agent's private configuration from path.
func LoadPrivate(path string) (*Private, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read private config: %w", err)
	}
	var priv Private
	if err := v.Unmarshal(&priv); err != nil {
		return nil, fmt.Errorf("config: decode private config: %w", err)
	}
	return &priv, nil
}

// LocalUsers returns the accounts this agent hosts — the ones it has a
// secret exponent for, as opposed to the remote accounts it only knows
// the public modulus and host of.
func (p *Private) LocalUsers() []string {
	users := make([]string, 0, len(p.Secret))
	for u := range p.Secret {
		users = append(users, u)
	}
	return users
}

// RemoteHosts returns the host:port of every public account this agent
// does not itself host, for gossip bootstrap.
func RemoteHosts(pub Public, priv *Private) []string {
	seen := make(map[string]bool)
	var hosts []string
	for user, u := range pub {
		if u.Host == "" {
			continue
		}
		if _, local := priv.Secret[user]; local {
			continue
		}
		if seen[u.Host] {
			continue
		}
		seen[u.Host] = true
		hosts = append(hosts, u.Host)
	}
	return hosts
}
