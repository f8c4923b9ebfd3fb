package crawler

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/imgmanager/internal/credentials"
)

func TestFindMatches(t *testing.T) {
	body := `<a href="/item/1">x</a> <a href="/item/22">y</a>`

	assert.Equal(t,
		[]Match{{"1"}, {"22"}},
		FindMatches(regexp.MustCompile(`href="/item/(\d+)"`), body))

	assert.Equal(t,
		[]Match{{`href="/item/1"`}, {`href="/item/22"`}},
		FindMatches(regexp.MustCompile(`href="/item/\d+"`), body))

	assert.Equal(t,
		[]Match{{"item", "1"}, {"item", "22"}},
		FindMatches(regexp.MustCompile(`/(item)/(\d+)`), body))

	assert.Empty(t, FindMatches(regexp.MustCompile(`nope`), body))
}

func TestLoginBody(t *testing.T) {
	creds := credentials.Credentials{Username: "a", Password: "b"}

	assert.Equal(t, "user=a&pass=b", LoginBody("user={username} pass={password}", creds, nil))
	assert.Equal(t, "pass=b&user=a", LoginBody("pass={password} user={username}", creds, nil))
	assert.Equal(t, "user=a&token=x1&remember=on",
		LoginBody("user={username}  token={0} remember=on", creds, Match{"x1"}))
}

func TestLoginBody_EscapesValues(t *testing.T) {
	creds := credentials.Credentials{Username: "me@example.com", Password: "p&ss w{0}rd"}

	assert.Equal(t, "email=me%40example.com&pw=p%26ss+w%7B0%7Drd",
		LoginBody("email={username} pw={password}", creds, Match{"ignored"}))
}

func TestLoginBody_CapturedTextIsNotResolvedAgain(t *testing.T) {
	creds := credentials.Credentials{Username: "ann", Password: "secret"}

	assert.Equal(t, "user=ann&token=%7Bpassword%7D",
		LoginBody("user={username} token={0}", creds, Match{"{password}"}))
	assert.Equal(t, "user=%7B0%7D&n=7",
		LoginBody("user={username} n={0}", credentials.Credentials{Username: "{0}"}, Match{"7"}))
	assert.Equal(t, "token=%7B3%7D", LoginBody("token={3}", creds, Match{"x"}))
}
