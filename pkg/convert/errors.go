package convert

type configError string

func (e configError) Error() string { return "convert: " + string(e) }

func errInvalid(msg string) error { return configError(msg) }
