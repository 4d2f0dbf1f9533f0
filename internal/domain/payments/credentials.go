package payments

import "entitlement-app/config"

// Environment names a gateway credential set.
type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentLive Environment = "live"
)

// EnvironmentFromFlag maps the client's isTestMode flag. The flag is
// unauthenticated and only ever selects credentials for order creation.
func EnvironmentFromFlag(isTestMode bool) Environment {
	if isTestMode {
		return EnvironmentTest
	}
	return EnvironmentLive
}

// Credential is a gateway key pair.
type Credential struct {
	Environment Environment
	KeyID       string
	KeySecret   string
}

// Credentials is the resolved, process-wide credential set.
type Credentials struct {
	test *Credential
	live *Credential
}

func NewCredentials(test, live *Credential) Credentials {
	return Credentials{test: test, live: live}
}

// CredentialsFromConfig builds the set from validated configuration.
func CredentialsFromConfig(r config.Razorpay) Credentials {
	var creds Credentials
	if r.TestKeyID != "" && r.TestKeySecret != "" {
		creds.test = &Credential{Environment: EnvironmentTest, KeyID: r.TestKeyID, KeySecret: r.TestKeySecret}
	}
	if r.LiveKeyID != "" && r.LiveKeySecret != "" {
		creds.live = &Credential{Environment: EnvironmentLive, KeyID: r.LiveKeyID, KeySecret: r.LiveKeySecret}
	}
	return creds
}

// Resolve returns the key pair for env, or a configuration error.
func (c Credentials) Resolve(env Environment) (Credential, error) {
	var cred *Credential
	switch env {
	case EnvironmentTest:
		cred = c.test
	case EnvironmentLive:
		cred = c.live
	default:
		return Credential{}, New(CodeInvalidRequest, "unknown environment "+string(env))
	}
	if cred == nil || cred.KeyID == "" || cred.KeySecret == "" {
		return Credential{}, New(CodeConfiguration, "Razorpay "+string(env)+" credentials not configured")
	}
	return *cred, nil
}

// Secrets lists the configured signing secrets, test first.
func (c Credentials) Secrets() []Secret {
	var out []Secret
	for _, cred := range []*Credential{c.test, c.live} {
		if cred != nil && cred.KeySecret != "" {
			out = append(out, Secret{Environment: cred.Environment, Key: []byte(cred.KeySecret)})
		}
	}
	return out
}
