package ephemeral_test

import (
	"context"
	"fmt"

	"github.com/orbeelabs/ephemeral"
)

func ExampleNew() {
	core := ephemeral.New()
	defer core.Close()

	fmt.Println("core created")
	// Output: core created
}

func ExampleRateLimiter_CheckAndIncrement() {
	core := ephemeral.New()
	defer core.Close()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		dec := core.Limiter().CheckAndIncrement(ctx, "203.0.113.7", ephemeral.NewsletterSignup)
		fmt.Printf("allowed=%v remaining=%d\n", dec.Allowed, dec.Remaining)
	}
	// Output:
	// allowed=true remaining=2
	// allowed=true remaining=1
	// allowed=true remaining=0
	// allowed=false remaining=0
}

func ExampleTokenService() {
	core := ephemeral.New()
	defer core.Close()

	ctx := context.Background()
	token, _ := core.Tokens().Issue(ctx, "ana@example.com", ephemeral.ActionCorrectData,
		map[string]string{"name": "Ana Souza"})

	red, ok, _ := core.Tokens().Redeem(ctx, token)
	fmt.Printf("ok=%v subject=%s action=%s name=%s\n", ok, red.Subject, red.Action, red.Payload["name"])

	_, ok, _ = core.Tokens().Redeem(ctx, token)
	fmt.Printf("second redeem ok=%v\n", ok)
	// Output:
	// ok=true subject=ana@example.com action=correct-data name=Ana Souza
	// second redeem ok=false
}
