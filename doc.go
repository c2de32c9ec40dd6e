// Package searchparams implements parsing and serializing of URL query
// strings with nested (bracketed) keys, in the style of the browser's
// URLSearchParams.
//
// A query is available in three forms:
//
//   - the query string itself, like "user[name]=ada&tags[]=a&tags[]=b"
//   - the tupples: a [*Map] from each name to a [Scalar], a [List] or a
//     nested [*Map], like {user: {name: ada}, tags: [a, b]}
//   - the entries: a flat list of [Entry] key value pairs, with the nesting
//     written into the key, like (user[name], ada), (tags[], a), (tags[], b)
//
// [Params] converts between them:
//
//	p := searchparams.New(map[string]any{
//	  "user": map[string]string{"name": "ada"},
//	  "tags": []string{"a", "b"},
//	})
//	p.Entries() // [{tags[] a} {tags[] b} {user[name] ada}]
//	p.String()  // tags%5B%5D=a&tags%5B%5D=b&user%5Bname%5D=ada
//
// Params can also be built from a query string, or from a list of
// [name, value] pairs:
//
//	searchparams.Parse("a[b]=1&a[c]=2")
//	searchparams.New([][2]string{{"a", "1"}, {"b", "2"}})
//
// Query strings are decoded like PHP's parse_str: "+" is a space, a
// repeated name overwrites the earlier value, "a[]" appends to a list, and
// "a[b]" sets a key in a map. Maps whose keys are exactly 0..n-1 are lists,
// so "a[0]=x&a[1]=y" and "a[]=x&a[]=y" have the same entries.
//
// Scalars are converted to strings with [Stringify]: true is "1", false and
// nil are "", and numbers use their decimal form.
//
// Like the builtin json package, [Marshal] and [Unmarshal] convert between
// Go values and query strings directly.
package searchparams
