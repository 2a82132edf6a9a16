package wp

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// perPage is the fixed page size for post listings. Keeping it constant means
// identical inputs always produce the identical query document, so responses
// stay cacheable by key.
const perPage = 10

// quickSearchLimit caps each branch of the quick-search fan-out.
const quickSearchLimit = 5

// PostFilter narrows a post listing. An empty field means "no filter" and is
// omitted from the query document entirely; an empty-string filter is a
// different CMS query and is never sent.
type PostFilter struct {
	Search   string
	Category string
	Author   string
	Tag      string
}

// Pagination selects the page to fetch. At most one cursor may be set:
// Before switches the query to last/before semantics, After (or neither)
// uses first/after. Absence of both means the first page.
type Pagination struct {
	After  string `validate:"excluded_with=Before"`
	Before string `validate:"excluded_with=After"`
}

var validate = validator.New()

// Validate rejects a Pagination carrying both cursors. Forward and backward
// cursors are never mixed silently.
func (p Pagination) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("wp: pagination: at most one of after/before may be set: %w", err)
	}
	return nil
}

func (p Pagination) backward() bool {
	return p.Before != ""
}

// postListSelection is the field set fetched for post listings. Single-post
// fetches add content and the twitter card overrides on top of it.
const postListSelection = `
      id
      title
      excerpt
      date
      modified
      slug
      featuredImage {
        node {
          sourceUrl
          altText
        }
      }
      seo {
        title
        metaDesc
        opengraphTitle
        opengraphDescription
        opengraphImage {
          sourceUrl
        }
      }
      author {
        node {
          id
          slug
          name
        }
      }
      categories {
        nodes {
          id
          name
          slug
        }
      }
      tags {
        nodes {
          id
          name
          slug
        }
      }`

// buildPostsQuery assembles the post listing document and its variable set.
// Variable definitions and where-clause fragments are included exactly when
// the corresponding filter is present, so the same inputs always yield the
// same document.
func buildPostsQuery(f PostFilter, pg Pagination) (string, map[string]any) {
	varDefs := []string{"$perPage: Int!"}
	if pg.backward() {
		varDefs = append(varDefs, "$before: String")
	} else {
		varDefs = append(varDefs, "$after: String")
	}

	var where []string
	vars := map[string]any{"perPage": perPage}
	if pg.backward() {
		vars["before"] = pg.Before
	} else if pg.After != "" {
		vars["after"] = pg.After
	}
	if f.Search != "" {
		varDefs = append(varDefs, "$search: String")
		where = append(where, "search: $search")
		vars["search"] = f.Search
	}
	if f.Category != "" {
		varDefs = append(varDefs, "$categorySlug: String")
		where = append(where, "categoryName: $categorySlug")
		vars["categorySlug"] = f.Category
	}
	if f.Author != "" {
		varDefs = append(varDefs, "$authorSlug: String")
		where = append(where, "authorName: $authorSlug")
		vars["authorSlug"] = f.Author
	}
	if f.Tag != "" {
		varDefs = append(varDefs, "$tagSlug: String")
		where = append(where, "tag: $tagSlug")
		vars["tagSlug"] = f.Tag
	}

	pageArgs := "first: $perPage, after: $after"
	if pg.backward() {
		pageArgs = "last: $perPage, before: $before"
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = ", where: { " + strings.Join(where, ", ") + " }"
	}

	query := fmt.Sprintf(`query GetPosts(%s) {
  posts(%s%s) {
    nodes {%s
    }
    pageInfo {
      startCursor
      endCursor
      hasNextPage
      hasPreviousPage
    }
  }
}`, strings.Join(varDefs, ", "), pageArgs, whereClause, postListSelection)

	return query, vars
}

const categoriesQuery = `query GetCategories {
  categories(first: 100) {
    nodes {
      id
      name
      slug
    }
  }
}`

const postBySlugQuery = `query GetPostBySlug($slug: ID!) {
  post(id: $slug, idType: SLUG) {
    id
    title
    content
    excerpt
    date
    modified
    slug
    featuredImage {
      node {
        sourceUrl
        altText
      }
    }
    seo {
      title
      metaDesc
      opengraphTitle
      opengraphDescription
      opengraphImage {
        sourceUrl
      }
      twitterTitle
      twitterDescription
      twitterImage {
        sourceUrl
      }
    }
    author {
      node {
        id
        slug
        name
      }
    }
    categories {
      nodes {
        id
        name
        slug
      }
    }
    tags {
      nodes {
        id
        name
        slug
      }
    }
  }
}`

const authorBySlugQuery = `query GetAuthorBySlug($slug: ID!) {
  user(id: $slug, idType: SLUG) {
    id
    slug
    name
    description
    avatar {
      url
    }
  }
}`

var quickSearchQuery = fmt.Sprintf(`query Search($search: String!, $limit: Int = %d) {
  posts(first: $limit, where: { search: $search }) {
    nodes {
      id
      title
      slug
      featuredImage {
        node {
          sourceUrl
        }
      }
    }
  }
  categories(first: $limit, where: { search: $search }) {
    nodes {
      id
      name
      slug
      count
    }
  }
  tags(first: $limit, where: { search: $search }) {
    nodes {
      id
      name
      slug
      count
    }
  }
}`, quickSearchLimit)

const topicsQuery = `query GetTopics {
  categories(first: 20) {
    nodes {
      id
      name
      slug
      count
    }
  }
  tags(first: 30) {
    nodes {
      id
      name
      slug
      count
    }
  }
}`
