package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AttachmentTag is the element rich-text bodies use to embed attachments.
// The signed form carries an sgid attribute, the portable form a gid
// attribute holding "<type>/<id>".
const AttachmentTag = "rich-text-attachment"

// Resolver answers the two questions rewriting needs from the record store.
type Resolver interface {
	// AccountOf returns the owning account of the referenced record, and
	// whether the record exists at all.
	AccountOf(recordType, recordID string) (accountID string, found bool, err error)
	Exists(recordType, recordID string) (bool, error)
}

// ToPortable replaces each attachment node's signed reference with the bare
// (type, id) pair. Nodes whose token does not verify, whose record cannot be
// found, or whose record belongs to a different account are left untouched:
// they are not this account's data to rewrite.
func ToPortable(body, accountID string, signer *Signer, resolver Resolver) (string, error) {
	return rewrite(body, func(n *html.Node) error {
		token, ok := attr(n, "sgid")
		if !ok {
			return nil
		}
		recordType, recordID, err := signer.Verify(token)
		if err != nil {
			return nil
		}
		owner, found, err := resolver.AccountOf(recordType, recordID)
		if err != nil {
			return err
		}
		if !found || owner != accountID {
			return nil
		}
		setAttr(n, "gid", recordType+"/"+recordID)
		removeAttr(n, "sgid")
		return nil
	})
}

// ToSigned replaces each attachment node's portable reference with a token
// signed under this install's key. A reference that does not resolve stays
// portable rather than failing the caller: a handful of missing attachments
// must not sink a whole transfer.
func ToSigned(body string, signer *Signer, resolver Resolver) (string, error) {
	return rewrite(body, func(n *html.Node) error {
		gid, ok := attr(n, "gid")
		if !ok {
			return nil
		}
		recordType, recordID, ok := splitReference(gid)
		if !ok {
			return nil
		}
		found, err := resolver.Exists(recordType, recordID)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		token, err := signer.Sign(recordType, recordID)
		if err != nil {
			return err
		}
		setAttr(n, "sgid", token)
		removeAttr(n, "gid")
		return nil
	})
}

func splitReference(gid string) (recordType, recordID string, ok bool) {
	recordType, recordID, ok = strings.Cut(gid, "/")
	if recordType == "" || recordID == "" {
		return "", "", false
	}
	return recordType, recordID, ok
}

func rewrite(body string, visit func(n *html.Node) error) (string, error) {
	if body == "" {
		return body, nil
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(body), context)
	if err != nil {
		return "", err
	}

	for _, n := range nodes {
		if err := walk(n, visit); err != nil {
			return "", err
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walk(n *html.Node, visit func(n *html.Node) error) error {
	if n.Type == html.ElementNode && n.Data == AttachmentTag {
		if err := visit(n); err != nil {
			return err
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := walk(c, visit); err != nil {
			return err
		}
	}
	return nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
