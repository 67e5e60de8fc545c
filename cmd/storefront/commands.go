package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/storefront"
)

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return login(ctx, sf, out, rest)
	case "login-google":
		return loginGoogle(ctx, sf, out, rest)
	case "logout":
		if err := sf.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Signed out.")
		return nil
	case "whoami":
		user, err := sf.Auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s> id=%s roles=%s\n", user.Name, user.Email, user.ID, strings.Join(user.Roles, ","))
		return nil
	case "products":
		return products(ctx, sf, out, strings.Join(rest, " "))
	case "product":
		id, err := productID(rest, 0)
		if err != nil {
			return err
		}
		p, err := sf.Catalog.Get(ctx, id)
		if err != nil {
			return err
		}
		printProducts(out, []catalog.Product{p})
		return nil
	case "categories":
		categories, err := sf.Catalog.Categories(ctx)
		if err != nil {
			return err
		}
		printCategories(out, categories, "")
		return nil
	case "cart":
		return cartCommand(ctx, sf, out, rest)
	case "checkout":
		return checkout(ctx, sf, out, rest)
	case "favorites":
		return favoritesCommand(ctx, sf, out, rest)
	case "shipping":
		return shipping(ctx, sf, out, rest)
	}
	return usageError(fmt.Sprintf("unknown command %q", cmd))
}

func login(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("STOREFRONT_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	user, err := sf.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s. Cart: %d item(s).\n", user.Name, sf.Cart.Count())
	return nil
}

func loginGoogle(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("login-google", flag.ContinueOnError)
	idToken := fs.String("id-token", "", "Google ID token")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *idToken == "" {
		return usageError("-id-token is required")
	}
	user, err := sf.LoginWithIDToken(ctx, *idToken)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s.\n", user.Name)
	return nil
}

func products(ctx context.Context, sf *storefront.Storefront, out io.Writer, query string) error {
	var (
		list []catalog.Product
		err  error
	)
	if query == "" {
		list, err = sf.Catalog.List(ctx)
	} else {
		list, err = sf.Catalog.Search(ctx, query)
	}
	if err != nil {
		return err
	}
	printProducts(out, list)
	return nil
}

func cartCommand(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	if err := sf.Start(ctx); err != nil {
		return err
	}
	if len(args) > 0 {
		var err error
		switch args[0] {
		case "add":
			var id int64
			if id, err = productID(args[1:], 0); err == nil {
				err = sf.Cart.Add(ctx, id)
			}
		case "set":
			var id int64
			if id, err = productID(args[1:], 1); err == nil {
				var qty int
				if qty, err = strconv.Atoi(args[2]); err != nil {
					return usageError("quantity must be a number")
				}
				err = sf.Cart.UpdateQuantity(ctx, id, qty)
			}
		case "remove":
			var id int64
			if id, err = productID(args[1:], 0); err == nil {
				err = sf.Cart.Remove(ctx, id)
			}
		case "clear":
			err = sf.Cart.Clear(ctx)
		default:
			return usageError(fmt.Sprintf("unknown cart command %q", args[0]))
		}
		if err != nil {
			return err
		}
	}
	printCart(out, sf.Cart.Snapshot())
	return nil
}

func checkout(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var addr cart.Address
	fs.StringVar(&addr.Name, "name", "", "recipient")
	fs.StringVar(&addr.Street, "street", "", "street")
	fs.StringVar(&addr.Number, "number", "", "house number")
	fs.StringVar(&addr.District, "district", "", "district")
	fs.StringVar(&addr.City, "city", "", "city")
	fs.StringVar(&addr.State, "state", "", "state")
	fs.StringVar(&addr.PostalCode, "postal-code", "", "postal code (CEP)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if addr.PostalCode != "" && missingLocation(addr) {
		filled, err := sf.PostalCodes.Fill(ctx, addr)
		if err != nil {
			return err
		}
		addr = filled
	}

	summary, err := sf.Cart.Checkout(ctx, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Order #%d for %s, %s %s, %s - %s/%s %s\n", summary.OrderID, addr.Name, addr.Street, addr.Number,
		addr.District, addr.City, addr.State, summary.Address.PostalCode)
	printCart(out, cart.State{OrderID: &summary.OrderID, Items: summary.Lines, Status: cart.Populated})
	return nil
}

func missingLocation(a cart.Address) bool {
	for _, v := range []string{a.Street, a.District, a.City, a.State} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func shipping(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("shipping", flag.ContinueOnError)
	code := fs.String("postal-code", "", "postal code (CEP)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *code == "" {
		return usageError("-postal-code is required")
	}
	quote, err := sf.PostalCodes.Quote(ctx, *code)
	if err != nil {
		return err
	}
	a := quote.Address
	fmt.Fprintf(out, "Delivery to %s - %s/%s: %s (%d business days)\n", a.District, a.City, a.State,
		money(quote.Fee), quote.BusinessDays)
	return nil
}

func favoritesCommand(ctx context.Context, sf *storefront.Storefront, out io.Writer, args []string) error {
	if err := sf.Favorites.Fetch(ctx); err != nil {
		return err
	}
	if len(args) > 0 {
		if args[0] != "toggle" {
			return usageError(fmt.Sprintf("unknown favorites command %q", args[0]))
		}
		id, err := productID(args[1:], 0)
		if err != nil {
			return err
		}
		p, err := sf.Catalog.Get(ctx, id)
		if err != nil {
			return err
		}
		on, err := sf.Favorites.Toggle(ctx, p)
		if err != nil {
			return err
		}
		if on {
			fmt.Fprintf(out, "Added %s to favourites.\n", p.Name)
		} else {
			fmt.Fprintf(out, "Removed %s from favourites.\n", p.Name)
		}
	}
	printProducts(out, sf.Favorites.List())
	return nil
}

// productID parses args[0] and checks that at least minExtra more arguments
// follow it.
func productID(args []string, minExtra int) (int64, error) {
	if len(args) < 1+minExtra {
		return 0, usageError("missing arguments")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(fmt.Sprintf("invalid product id %q", args[0]))
	}
	return id, nil
}

func printProducts(out io.Writer, list []catalog.Product) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range list {
		stock := "yes"
		if !p.InStock() {
			stock = "no"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, money(p.FinalPrice()), stock)
	}
	tw.Flush()
}

func printCategories(out io.Writer, categories []catalog.Category, indent string) {
	for _, c := range categories {
		fmt.Fprintf(out, "%s%d %s\n", indent, c.ID, c.Name)
		printCategories(out, c.SubCategories, indent+"  ")
	}
}

func printCart(out io.Writer, s cart.State) {
	if len(s.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSELLER\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range s.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Seller, l.Quantity, money(l.Price), money(l.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\t\t%d\tTOTAL\t%s\n", s.Count(), money(s.Total()))
	tw.Flush()
}

func money(v float64) string {
	return "R$ " + strconv.FormatFloat(v, 'f', 2, 64)
}
