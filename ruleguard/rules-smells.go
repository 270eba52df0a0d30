package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards returning the same value are mergeable with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// The provider gateway tags errors with the backend; a bare wrap loses
	// the tag and makes multi-backend failures hard to attribute.
	m.Match(`fmt.Errorf("%w", $err)`).
		Report(`error wrap adds no context; prefix with the operation or provider name`)

	// context.Background() inside a request path breaks caller-driven
	// cancellation of in-flight provider calls.
	m.Match(`$p.ChatCompletion(context.Background(), $*_)`,
		`$p.Embed(context.Background(), $*_)`,
		`$p.Rerank(context.Background(), $*_)`).
		Report(`provider call ignores the request context; pass the caller's ctx so aborts propagate`)

	// time.Sleep in request handling is almost always a forgotten debug aid
	// or a hand-rolled retry, and this core never retries.
	m.Match(`time.Sleep($_)`).
		Where(!m.File().Name.Matches(`.*_test\.go`)).
		Report(`time.Sleep outside tests; external calls have their own timeouts and retries belong to callers`)
}
